package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/stockbook/stockbook/internal/platform/db"
)

type barcodeRepo struct {
	db db.DBTX
}

const barcodeColumns = `id, tipo, valor, fecha_asignacion, COALESCE(observaciones, ''), eliminado`

func (r *barcodeRepo) Insert(ctx context.Context, b *Barcode) error {
	query := `INSERT INTO codigo_barras (tipo, valor, fecha_asignacion, observaciones, eliminado)
	          VALUES ($1, $2, $3, $4, FALSE) RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		string(b.Type), b.Value, pgtype.Date{Time: b.AssignedDate, Valid: true}, textOrNull(b.Observations),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, db.BarcodeValueIndex) {
			return &DuplicateValueError{Value: b.Value}
		}
		return err
	}
	b.ID = id
	b.Deleted = false
	return nil
}

func (r *barcodeRepo) Update(ctx context.Context, b Barcode) (int64, error) {
	query := `UPDATE codigo_barras SET tipo = $1, valor = $2, fecha_asignacion = $3, observaciones = $4
	          WHERE id = $5 AND eliminado = FALSE`
	tag, err := r.db.Exec(ctx, query,
		string(b.Type), b.Value, pgtype.Date{Time: b.AssignedDate, Valid: true}, textOrNull(b.Observations), b.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err, db.BarcodeValueIndex) {
			return 0, &DuplicateValueError{Value: b.Value}
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *barcodeRepo) SoftDelete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE codigo_barras SET eliminado = TRUE WHERE id = $1 AND eliminado = FALSE`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *barcodeRepo) Recover(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE codigo_barras SET eliminado = FALSE WHERE id = $1 AND eliminado = TRUE`, id)
	if err != nil {
		if db.IsUniqueViolation(err, db.BarcodeValueIndex) {
			return 0, &DuplicateValueError{}
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *barcodeRepo) Get(ctx context.Context, id int64) (Barcode, error) {
	query := `SELECT ` + barcodeColumns + ` FROM codigo_barras WHERE id = $1 AND eliminado = FALSE`
	return scanBarcode(r.db.QueryRow(ctx, query, id))
}

func (r *barcodeRepo) GetIncludingDeleted(ctx context.Context, id int64) (Barcode, error) {
	query := `SELECT ` + barcodeColumns + ` FROM codigo_barras WHERE id = $1`
	return scanBarcode(r.db.QueryRow(ctx, query, id))
}

func (r *barcodeRepo) List(ctx context.Context) ([]Barcode, error) {
	query := `SELECT ` + barcodeColumns + ` FROM codigo_barras WHERE eliminado = FALSE ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var barcodes []Barcode
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, err
		}
		barcodes = append(barcodes, b)
	}
	return barcodes, rows.Err()
}

func (r *barcodeRepo) FindActiveByValue(ctx context.Context, value string, excludeID int64) (Barcode, error) {
	query := `SELECT ` + barcodeColumns + ` FROM codigo_barras
	          WHERE valor = $1 AND eliminado = FALSE AND id <> $2
	          LIMIT 1`
	return scanBarcode(r.db.QueryRow(ctx, query, value, excludeID))
}

func scanBarcode(row pgx.Row) (Barcode, error) {
	var (
		b    Barcode
		tipo string
		date pgtype.Date
	)
	err := row.Scan(&b.ID, &tipo, &b.Value, &date, &b.Observations, &b.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Barcode{}, ErrNotFound
		}
		return Barcode{}, err
	}
	t, err := ParseBarcodeType(tipo)
	if err != nil {
		return Barcode{}, fmt.Errorf("catalog: barcode %d: %w", b.ID, err)
	}
	b.Type = t
	b.AssignedDate = date.Time
	return b, nil
}
