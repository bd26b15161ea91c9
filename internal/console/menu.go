// Package console implements the interactive text menu over the catalog
// service.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stockbook/stockbook/internal/catalog"
)

// Catalog is the part of catalog.Service driven by the menu.
type Catalog interface {
	CreateProduct(ctx context.Context, p *catalog.Product) (int64, error)
	CreateProductWithBarcode(ctx context.Context, p *catalog.Product, b *catalog.Barcode) error
	UpdateProduct(ctx context.Context, p catalog.Product) error
	SoftDeleteProduct(ctx context.Context, id int64) (bool, error)
	RecoverProduct(ctx context.Context, id int64) error
	AssignBarcode(ctx context.Context, productID, barcodeID int64) error
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	SearchProductsByName(ctx context.Context, name string) ([]catalog.Product, error)
	ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error)

	CreateBarcode(ctx context.Context, b *catalog.Barcode) (int64, error)
	UpdateBarcode(ctx context.Context, b catalog.Barcode) error
	SoftDeleteBarcode(ctx context.Context, id int64) (bool, error)
	RecoverBarcode(ctx context.Context, id int64) error
	GetBarcode(ctx context.Context, id int64) (catalog.Barcode, error)
	ListBarcodes(ctx context.Context) ([]catalog.Barcode, error)
}

// Options configures a Menu. Zero values fall back to the process streams,
// the default logger, a 30 second action timeout and the wall clock.
type Options struct {
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
	Logger        *slog.Logger
	ActionTimeout time.Duration
	Now           func() time.Time
}

// Menu reads options from Stdin and runs one catalog action per option.
type Menu struct {
	catalog Catalog
	in      *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
	actions map[int]action
}

type action struct {
	name string
	run  func(context.Context) error
}

// New constructs a Menu bound to c.
func New(c Catalog, opts Options) *Menu {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Menu{
		catalog: c,
		in:      bufio.NewScanner(opts.Stdin),
		out:     opts.Stdout,
		errOut:  opts.Stderr,
		logger:  opts.Logger,
		timeout: opts.ActionTimeout,
		now:     opts.Now,
	}
	m.actions = map[int]action{
		1:  {"create_product", m.createProduct},
		2:  {"list_products", m.listProducts},
		3:  {"update_product", m.updateProduct},
		4:  {"delete_product", m.deleteProduct},
		5:  {"recover_product", m.recoverProduct},
		6:  {"assign_barcode", m.assignBarcode},
		7:  {"create_barcode", m.createBarcode},
		8:  {"list_barcodes", m.listBarcodes},
		9:  {"update_barcode", m.updateBarcode},
		10: {"delete_barcode", m.deleteBarcode},
		11: {"recover_barcode", m.recoverBarcode},
	}
	return m
}

const mainMenu = `
|-------------------------------------|
|           MENU PRINCIPAL
|-------------------------------------|
|  GESTION DE PRODUCTOS
|   1.  Crear producto
|   2.  Listar productos
|   3.  Actualizar producto
|   4.  Eliminar producto
|   5.  Recuperar producto
|   6.  Asignar codigo de barras a producto
|  GESTION DE CODIGOS DE BARRAS
|   7.  Crear codigo de barras
|   8.  Listar codigos de barras
|   9.  Actualizar codigo de barras
|   10. Eliminar codigo de barras
|   11. Recuperar codigo de barras
|
|   0.  Salir
|-------------------------------------|
`

// Run shows the main menu until the user picks 0, input ends or ctx is
// cancelled. Action failures are reported and never end the loop.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(m.out, mainMenu)
		line, err := m.readLine("Seleccione una opcion: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		opt, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "Opción inválida. Ingrese un número.")
			continue
		}
		if opt == 0 {
			fmt.Fprintln(m.out, "Saliendo...")
			return nil
		}
		act, ok := m.actions[opt]
		if !ok {
			fmt.Fprintln(m.out, "Opción inválida.")
			continue
		}
		if err := m.perform(ctx, act); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// perform runs act under its own action id. Only input failures are
// returned; everything else is shown to the user and logged.
func (m *Menu) perform(ctx context.Context, act action) error {
	logger := m.logger.With(slog.String("action", act.name), slog.String("action_id", uuid.NewString()))
	start := time.Now()
	err := act.run(ctx)
	if errors.Is(err, errBack) {
		fmt.Fprintln(m.out, "\nVolviendo al menu principal...")
		return nil
	}
	if err == nil {
		logger.Info("action completed", slog.Duration("elapsed", time.Since(start)))
		return nil
	}
	if isInputErr(err) {
		return err
	}
	var shown reportedError
	if !errors.As(err, &shown) {
		fmt.Fprintln(m.errOut, userMessage(err))
	}
	level := slog.LevelWarn
	if errors.Is(err, catalog.ErrStore) || errors.Is(err, context.DeadlineExceeded) {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "action failed", slog.Any("error", err))
	return nil
}

// saveBarcode runs fn and, while it fails with a duplicate value, offers
// to enter another value for b and retries.
func (m *Menu) saveBarcode(ctx context.Context, b *catalog.Barcode, fn func(context.Context) error) error {
	for {
		err := m.call(ctx, fn)
		if errors.Is(err, catalog.ErrStore) || !errors.Is(err, catalog.ErrDuplicate) {
			return err
		}
		fmt.Fprintln(m.errOut, userMessage(err))
		again, rerr := m.confirm("¿Desea ingresar otro valor?")
		if rerr != nil {
			return rerr
		}
		if !again {
			return reportedError{err}
		}
		if b.Value, rerr = m.readText("Valor", 20, true); rerr != nil {
			return rerr
		}
	}
}

// reportedError marks a failure the user has already been shown.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// call bounds a single catalog call by the action timeout.
func (m *Menu) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return fn(ctx)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: la operación excedió el tiempo máximo."
	case errors.Is(err, catalog.ErrStore):
		return "Error de base de datos: " + err.Error()
	case errors.Is(err, catalog.ErrValidation):
		return "Error de validación: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
