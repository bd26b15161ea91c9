package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/stockbook/stockbook/internal/platform/db"
)

type productRepo struct {
	db db.DBTX
}

// productSelect resolves the barcode in the same round trip. Deleted
// barcodes fall out of the join, leaving the product without one.
const productSelect = `
	SELECT p.id, p.nombre, COALESCE(p.marca, ''), COALESCE(p.categoria, ''),
	       p.precio, p.peso, p.stock, p.codigo_barras_id, p.eliminado,
	       cb.id, cb.tipo, cb.valor, cb.fecha_asignacion, cb.observaciones
	FROM producto p
	LEFT JOIN codigo_barras cb ON cb.id = p.codigo_barras_id AND cb.eliminado = FALSE`

func (r *productRepo) Insert(ctx context.Context, p *Product) error {
	query := `INSERT INTO producto (nombre, marca, categoria, precio, peso, stock, codigo_barras_id, eliminado)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE) RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		p.Name, textOrNull(p.Brand), textOrNull(string(p.Category)),
		numericFromDecimal(p.Price), numericFromDecimal(p.Weight), p.Stock, p.BarcodeID,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, db.ProductBarcodeIndex) {
			return ErrBarcodeAssigned
		}
		return err
	}
	p.ID = id
	p.Deleted = false
	return nil
}

func (r *productRepo) Update(ctx context.Context, p Product) (int64, error) {
	query := `UPDATE producto SET nombre = $1, marca = $2, categoria = $3, precio = $4, peso = $5, stock = $6
	          WHERE id = $7 AND eliminado = FALSE`
	tag, err := r.db.Exec(ctx, query,
		p.Name, textOrNull(p.Brand), textOrNull(string(p.Category)),
		numericFromDecimal(p.Price), numericFromDecimal(p.Weight), p.Stock, p.ID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) SoftDelete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE producto SET eliminado = TRUE WHERE id = $1 AND eliminado = FALSE`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) Recover(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE producto SET eliminado = FALSE WHERE id = $1 AND eliminado = TRUE`, id)
	if err != nil {
		if db.IsUniqueViolation(err, db.ProductBarcodeIndex) {
			return 0, ErrBarcodeAssigned
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1 AND p.eliminado = FALSE`, id))
}

func (r *productRepo) GetIncludingDeleted(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
}

func (r *productRepo) GetByName(ctx context.Context, name string) (Product, error) {
	query := productSelect + ` WHERE p.nombre = $1 AND p.eliminado = FALSE ORDER BY p.id LIMIT 1`
	return scanProduct(r.db.QueryRow(ctx, query, name))
}

func (r *productRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` WHERE p.eliminado = FALSE ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) SetBarcode(ctx context.Context, productID, barcodeID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE producto SET codigo_barras_id = $1 WHERE id = $2 AND eliminado = FALSE`, barcodeID, productID)
	if err != nil {
		if db.IsUniqueViolation(err, db.ProductBarcodeIndex) {
			return 0, ErrBarcodeAssigned
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) ClearBarcode(ctx context.Context, barcodeID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE producto SET codigo_barras_id = NULL WHERE codigo_barras_id = $1`, barcodeID)
	return err
}

func (r *productRepo) FindActiveByBarcode(ctx context.Context, barcodeID, excludeID int64) (Product, error) {
	query := productSelect + ` WHERE p.codigo_barras_id = $1 AND p.eliminado = FALSE AND p.id <> $2 LIMIT 1`
	return scanProduct(r.db.QueryRow(ctx, query, barcodeID, excludeID))
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p        Product
		category string
		price    pgtype.Numeric
		weight   pgtype.Numeric
		cbID     pgtype.Int8
		cbType   pgtype.Text
		cbValue  pgtype.Text
		cbDate   pgtype.Date
		cbObs    pgtype.Text
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &category,
		&price, &weight, &p.Stock, &p.BarcodeID, &p.Deleted,
		&cbID, &cbType, &cbValue, &cbDate, &cbObs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: product %d: %w", p.ID, err)
	}
	p.Category = cat
	p.Price = decimalFromNumeric(price)
	p.Weight = decimalFromNumeric(weight)
	if cbID.Valid {
		t, err := ParseBarcodeType(cbType.String)
		if err != nil {
			return Product{}, fmt.Errorf("catalog: product %d: %w", p.ID, err)
		}
		p.Barcode = &Barcode{
			Entity:       Entity{ID: cbID.Int64},
			Type:         t,
			Value:        cbValue.String,
			AssignedDate: cbDate.Time,
			Observations: cbObs.String,
		}
	}
	return p, nil
}
