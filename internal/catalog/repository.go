package catalog

import (
	"context"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/platform/db"
)

// BarcodeRepository persists barcodes. Reads only return active rows unless
// the method name says otherwise.
type BarcodeRepository interface {
	Insert(ctx context.Context, b *Barcode) error
	Update(ctx context.Context, b Barcode) (int64, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
	Recover(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (Barcode, error)
	GetIncludingDeleted(ctx context.Context, id int64) (Barcode, error)
	List(ctx context.Context) ([]Barcode, error)
	// FindActiveByValue looks up an active barcode holding value, ignoring excludeID.
	FindActiveByValue(ctx context.Context, value string, excludeID int64) (Barcode, error)
}

// ProductRepository persists products. Reads resolve the linked barcode
// with a single outer join.
type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p Product) (int64, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
	Recover(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetIncludingDeleted(ctx context.Context, id int64) (Product, error)
	GetByName(ctx context.Context, name string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	SetBarcode(ctx context.Context, productID, barcodeID int64) (int64, error)
	// ClearBarcode drops every product reference to barcodeID, deleted products included.
	ClearBarcode(ctx context.Context, barcodeID int64) error
	// FindActiveByBarcode returns the active product linked to barcodeID, ignoring excludeID.
	FindActiveByBarcode(ctx context.Context, barcodeID, excludeID int64) (Product, error)
}

// TxRepository exposes both repositories bound to the same handle.
type TxRepository interface {
	Barcodes() BarcodeRepository
	Products() ProductRepository
}

// Store runs reads against the pool and units of work inside transactions.
type Store interface {
	TxRepository
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Repository is the PostgreSQL Store.
type Repository struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
	handle
}

// handle binds both repositories to one db.DBTX: the pool or a pgx.Tx.
type handle struct {
	barcodes *barcodeRepo
	products *productRepo
}

func newHandle(conn db.DBTX) handle {
	return handle{barcodes: &barcodeRepo{db: conn}, products: &productRepo{db: conn}}
}

func (h handle) Barcodes() BarcodeRepository { return h.barcodes }
func (h handle) Products() ProductRepository { return h.products }

// NewRepository constructs the PostgreSQL store using isolation for every transaction.
func NewRepository(pool *pgxpool.Pool, isolation pgx.TxIsoLevel) *Repository {
	return &Repository{
		pool:   pool,
		opts:   pgx.TxOptions{IsoLevel: isolation},
		handle: newHandle(pool),
	}
}

// NewTxRepository binds the repositories to a transaction owned by the caller.
func NewTxRepository(conn db.DBTX) TxRepository {
	return newHandle(conn)
}

// WithTx executes fn inside a transaction; fn receives repositories bound to it.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		return fn(ctx, newHandle(tx))
	})
}

func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(d.Coefficient()), Exp: d.Exponent(), Valid: true}
}

func decimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
