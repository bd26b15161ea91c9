package console

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/platform/db"
)

type stubCatalog struct {
	products map[int64]catalog.Product
	barcodes map[int64]catalog.Barcode

	created  []catalog.Product
	composed []catalog.Barcode
	updated  []catalog.Product
	deleted  []int64
	assigned [][2]int64

	err   error
	block bool
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		products: make(map[int64]catalog.Product),
		barcodes: make(map[int64]catalog.Barcode),
	}
}

func (s *stubCatalog) fail(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *stubCatalog) CreateProduct(ctx context.Context, p *catalog.Product) (int64, error) {
	if err := s.fail(ctx); err != nil {
		return 0, err
	}
	p.ID = int64(len(s.products) + 1)
	s.products[p.ID] = *p
	s.created = append(s.created, *p)
	return p.ID, nil
}

func (s *stubCatalog) CreateProductWithBarcode(ctx context.Context, p *catalog.Product, b *catalog.Barcode) error {
	if err := s.fail(ctx); err != nil {
		return err
	}
	b.ID = int64(len(s.barcodes) + 1)
	s.barcodes[b.ID] = *b
	p.ID = int64(len(s.products) + 1)
	p.Barcode = b
	s.products[p.ID] = *p
	s.created = append(s.created, *p)
	s.composed = append(s.composed, *b)
	return nil
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, p catalog.Product) error {
	if err := s.fail(ctx); err != nil {
		return err
	}
	s.updated = append(s.updated, p)
	return nil
}

func (s *stubCatalog) SoftDeleteProduct(ctx context.Context, id int64) (bool, error) {
	if err := s.fail(ctx); err != nil {
		return false, err
	}
	s.deleted = append(s.deleted, id)
	return true, nil
}

func (s *stubCatalog) RecoverProduct(ctx context.Context, id int64) error {
	return s.fail(ctx)
}

func (s *stubCatalog) AssignBarcode(ctx context.Context, productID, barcodeID int64) error {
	if err := s.fail(ctx); err != nil {
		return err
	}
	s.assigned = append(s.assigned, [2]int64{productID, barcodeID})
	return nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, &catalog.NotFoundError{Entity: "producto", Key: "con ID"}
	}
	return p, nil
}

func (s *stubCatalog) SearchProductsByName(ctx context.Context, name string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	all := make([]catalog.Product, 0, len(s.products))
	for id := int64(1); id <= int64(len(s.products)); id++ {
		if p, ok := s.products[id]; ok {
			all = append(all, p)
		}
	}
	return catalog.FilterProducts(all, filter), nil
}

func (s *stubCatalog) CreateBarcode(ctx context.Context, b *catalog.Barcode) (int64, error) {
	if err := s.fail(ctx); err != nil {
		return 0, err
	}
	b.ID = int64(len(s.barcodes) + 1)
	s.barcodes[b.ID] = *b
	return b.ID, nil
}

func (s *stubCatalog) UpdateBarcode(ctx context.Context, b catalog.Barcode) error {
	if err := s.fail(ctx); err != nil {
		return err
	}
	s.barcodes[b.ID] = b
	return nil
}

func (s *stubCatalog) SoftDeleteBarcode(ctx context.Context, id int64) (bool, error) {
	if err := s.fail(ctx); err != nil {
		return false, err
	}
	delete(s.barcodes, id)
	return true, nil
}

func (s *stubCatalog) RecoverBarcode(ctx context.Context, id int64) error {
	return s.fail(ctx)
}

func (s *stubCatalog) GetBarcode(ctx context.Context, id int64) (catalog.Barcode, error) {
	b, ok := s.barcodes[id]
	if !ok {
		return catalog.Barcode{}, &catalog.NotFoundError{Entity: "código de barras", Key: "con ID"}
	}
	return b, nil
}

func (s *stubCatalog) ListBarcodes(ctx context.Context) ([]catalog.Barcode, error) {
	out := make([]catalog.Barcode, 0, len(s.barcodes))
	for id := int64(1); id <= int64(len(s.barcodes))+1; id++ {
		if b, ok := s.barcodes[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type harness struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	logs   *bytes.Buffer
}

var fixedNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.Local)

func runMenu(t *testing.T, stub Catalog, timeout time.Duration, lines ...string) harness {
	t.Helper()
	h := harness{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer), logs: new(bytes.Buffer)}
	menu := New(stub, Options{
		Stdin:         strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Stdout:        h.stdout,
		Stderr:        h.stderr,
		Logger:        slog.New(slog.NewJSONHandler(h.logs, nil)),
		ActionTimeout: timeout,
		Now:           func() time.Time { return fixedNow },
	})
	require.NoError(t, menu.Run(context.Background()))
	return h
}

func TestRunExitsOnZeroAndEOF(t *testing.T) {
	h := runMenu(t, newStubCatalog(), 0, "0")
	assert.Contains(t, h.stdout.String(), "MENU PRINCIPAL")
	assert.Contains(t, h.stdout.String(), "Saliendo...")

	h = runMenu(t, newStubCatalog(), 0, "abc", "42")
	assert.Contains(t, h.stdout.String(), "Opción inválida. Ingrese un número.")
	assert.Contains(t, h.stdout.String(), "Opción inválida.")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	menu := New(newStubCatalog(), Options{Stdin: strings.NewReader("0\n"), Stdout: new(bytes.Buffer)})
	require.ErrorIs(t, menu.Run(ctx), context.Canceled)
}

func TestCreateProductWithoutBarcode(t *testing.T) {
	stub := newStubCatalog()
	h := runMenu(t, stub, 0,
		"1",
		"", "Leche", // blank name is asked again
		"",
		"abc", "2,50",
		"1",
		"-1", "45",
		"0",
		"n",
		"0",
	)

	require.Len(t, stub.created, 1)
	p := stub.created[0]
	assert.Equal(t, "Leche", p.Name)
	assert.Empty(t, p.Brand)
	assert.Equal(t, catalog.Category(""), p.Category)
	assert.True(t, decimal.RequireFromString("2.5").Equal(p.Price))
	assert.Equal(t, 45, p.Stock)

	out := h.stdout.String()
	assert.Contains(t, out, "El campo no puede estar vacío.")
	assert.Contains(t, out, "Debe ingresar un número válido.")
	assert.Contains(t, out, "*ERROR. No puede ser un número negativo.")
	assert.Contains(t, out, "✓ Producto creado exitosamente: Leche (ID 1)")
	assert.Contains(t, h.logs.String(), `"action":"create_product"`)
	assert.Contains(t, h.logs.String(), `"action_id":"`)
}

func TestCreateProductWithBarcode(t *testing.T) {
	stub := newStubCatalog()
	h := runMenu(t, stub, 0,
		"1",
		"Leche", "La Serenísima", "2.50", "1.0", "45",
		"1",
		"s",
		"9", "1",
		"7791234567890",
		"Lote L123",
		"0",
	)

	require.Len(t, stub.composed, 1)
	b := stub.composed[0]
	assert.Equal(t, catalog.BarcodeEAN13, b.Type)
	assert.Equal(t, "7791234567890", b.Value)
	assert.Equal(t, "Lote L123", b.Observations)
	assert.Equal(t, "2024-03-05", b.AssignedDate.Format(dateLayout))
	assert.Equal(t, catalog.CategoryFood, stub.created[0].Category)
	assert.Contains(t, h.stdout.String(), "La opción debe estar entre 1 y 3")
	assert.Contains(t, h.stdout.String(), "✓ Producto con código de barras creado exitosamente: Leche (ID 1)")
}

func TestActionErrorsAreReported(t *testing.T) {
	stub := newStubCatalog()
	stub.err = &catalog.DuplicateValueError{Value: "7791234567890"}
	h := runMenu(t, stub, 0,
		"7", "1", "7791234567890", "", "n",
		"0",
	)

	assert.Equal(t, 1, strings.Count(h.stderr.String(), "ya existe"))
	assert.Contains(t, h.stderr.String(), `Error: ya existe un código de barras activo con el valor "7791234567890"`)
	assert.Contains(t, h.stdout.String(), "Saliendo...")
	assert.Contains(t, h.logs.String(), `"level":"WARN"`)
	assert.Contains(t, h.logs.String(), "action failed")
}

func TestDuplicateBarcodeValueIsReprompted(t *testing.T) {
	stub := &duplicateOnce{stubCatalog: newStubCatalog(), taken: "7791234567890"}
	h := runMenu(t, stub, 0,
		"7", "1", "7791234567890", "", "s", "7790000000001",
		"0",
	)

	assert.Contains(t, h.stderr.String(), "ya existe un código de barras activo")
	require.Len(t, stub.barcodes, 1)
	assert.Equal(t, "7790000000001", stub.barcodes[1].Value)
	assert.Contains(t, h.stdout.String(), "Creado exitosamente")
}

func TestRollbackFailureIsNotReprompted(t *testing.T) {
	stub := newStubCatalog()
	stub.err = &catalog.StoreError{
		Op:  "create barcode",
		Err: fmt.Errorf("%w: connection reset (cause: %w)", db.ErrRollback, &catalog.DuplicateValueError{Value: "7791234567890"}),
	}
	h := runMenu(t, stub, 0,
		"7", "1", "7791234567890", "",
		"0",
	)

	assert.Contains(t, h.stderr.String(), "Error de base de datos: catalog: create barcode")
	assert.NotContains(t, h.stdout.String(), "¿Desea ingresar otro valor?")
	assert.Contains(t, h.stdout.String(), "Saliendo...")
	assert.Contains(t, h.logs.String(), `"level":"ERROR"`)
}

func TestZeroIDGoesBack(t *testing.T) {
	stub := newStubCatalog()
	h := runMenu(t, stub, 0, "4", "0", "0")

	assert.Empty(t, stub.deleted)
	assert.Contains(t, h.stdout.String(), "Volviendo al menu principal...")
	assert.Contains(t, h.stdout.String(), "Saliendo...")
	assert.Empty(t, h.stderr.String())
}

// duplicateOnce rejects the taken value and accepts anything else.
type duplicateOnce struct {
	*stubCatalog
	taken string
}

func (d *duplicateOnce) CreateBarcode(ctx context.Context, b *catalog.Barcode) (int64, error) {
	if b.Value == d.taken {
		return 0, &catalog.DuplicateValueError{Value: b.Value}
	}
	return d.stubCatalog.CreateBarcode(ctx, b)
}

func TestStoreErrorsAreLoggedAsErrors(t *testing.T) {
	stub := newStubCatalog()
	stub.err = &catalog.StoreError{Op: "recover product", Err: context.Canceled}
	h := runMenu(t, stub, 0, "5", "3", "0")

	assert.Contains(t, h.stderr.String(), "Error de base de datos: catalog: recover product")
	assert.Contains(t, h.logs.String(), `"level":"ERROR"`)
}

func TestActionTimeout(t *testing.T) {
	stub := newStubCatalog()
	stub.block = true
	h := runMenu(t, stub, 10*time.Millisecond, "11", "1", "0")

	assert.Contains(t, h.stderr.String(), "la operación excedió el tiempo máximo")
}

func TestListProducts(t *testing.T) {
	stub := newStubCatalog()
	stub.products[1] = catalog.Product{
		Entity: catalog.Entity{ID: 1}, Name: "Leche", Category: catalog.CategoryFood,
		Price: decimal.RequireFromString("2.5"), Weight: decimal.RequireFromString("1"), Stock: 45,
	}
	stub.products[2] = catalog.Product{
		Entity: catalog.Entity{ID: 2}, Name: "Agua", Category: catalog.CategoryDrinks,
		Price: decimal.RequireFromString("1.5"), Weight: decimal.RequireFromString("1.5"), Stock: 88,
		Barcode: &catalog.Barcode{
			Entity: catalog.Entity{ID: 4}, Type: catalog.BarcodeEAN13, Value: "7791234567893",
			AssignedDate: time.Date(2024, time.January, 23, 0, 0, 0, 0, time.UTC),
		},
	}

	h := runMenu(t, stub, 0, "2", "1", "0")
	out := h.stdout.String()
	assert.Contains(t, out, "Total: 2 producto(s)")
	assert.Contains(t, out, " - Precio: 2.50")
	assert.Contains(t, out, "Código de barras: No asignado")
	assert.Contains(t, out, " - Valor: 7791234567893")

	h = runMenu(t, stub, 0, "2", "4", "2", "0")
	assert.Contains(t, h.stdout.String(), "Total: 1 producto(s)")
	assert.NotContains(t, h.stdout.String(), "Nombre: Leche")

	h = runMenu(t, stub, 0, "2", "2", "9", "0")
	assert.Contains(t, h.stdout.String(), "No se encontraron productos.")
	assert.Empty(t, h.stderr.String())

	h = runMenu(t, stub, 0, "2", "3", "lech", "0")
	assert.Contains(t, h.stdout.String(), "Nombre: Leche")
}

func TestUpdateProductKeepsBlankAnswers(t *testing.T) {
	stub := newStubCatalog()
	stub.products[1] = catalog.Product{
		Entity: catalog.Entity{ID: 1}, Name: "Leche", Brand: "Sancor", Category: catalog.CategoryFood,
		Price: decimal.RequireFromString("2.5"), Weight: decimal.RequireFromString("1"), Stock: 45,
	}

	runMenu(t, stub, 0, "3", "1", "", "", "3.10", "", "10", "s", "0", "0")

	require.Len(t, stub.updated, 1)
	p := stub.updated[0]
	assert.Equal(t, "Leche", p.Name)
	assert.Equal(t, "Sancor", p.Brand)
	assert.Equal(t, "3.1", p.Price.String())
	assert.Equal(t, "1", p.Weight.String())
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, catalog.Category(""), p.Category)
}

func TestDeleteProductConfirmation(t *testing.T) {
	stub := newStubCatalog()
	stub.products[1] = catalog.Product{Entity: catalog.Entity{ID: 1}, Name: "Leche"}

	h := runMenu(t, stub, 0, "4", "1", "no", "0")
	assert.Empty(t, stub.deleted)
	assert.Contains(t, h.stdout.String(), "Eliminación cancelada.")

	h = runMenu(t, stub, 0, "4", "1", "S", "0")
	assert.Equal(t, []int64{1}, stub.deleted)
	assert.Contains(t, h.stdout.String(), "✓ Producto eliminado exitosamente")

	h = runMenu(t, stub, 0, "4", "7", "0")
	assert.Contains(t, h.stderr.String(), "producto con ID no encontrado")
}

func TestBarcodeActions(t *testing.T) {
	stub := newStubCatalog()
	stub.products[1] = catalog.Product{Entity: catalog.Entity{ID: 1}, Name: "Leche"}

	h := runMenu(t, stub, 0, "7", "2", "77912345", "", "8", "0")
	require.Contains(t, stub.barcodes, int64(1))
	assert.Equal(t, catalog.BarcodeEAN8, stub.barcodes[1].Type)
	assert.Contains(t, h.stdout.String(), "**** Creado exitosamente ****")
	assert.Contains(t, h.stdout.String(), " - Observaciones: (sin observaciones)")
	assert.Contains(t, h.stdout.String(), "Total: 1 código(s) de barras")

	runMenu(t, stub, 0, "9", "1", "0", "", "Caja x12", "0")
	assert.Equal(t, catalog.BarcodeEAN8, stub.barcodes[1].Type)
	assert.Equal(t, "77912345", stub.barcodes[1].Value)
	assert.Equal(t, "Caja x12", stub.barcodes[1].Observations)

	runMenu(t, stub, 0, "6", "1", "1", "0")
	assert.Equal(t, [][2]int64{{1, 1}}, stub.assigned)

	h = runMenu(t, stub, 0, "10", "1", "s", "8", "0")
	assert.Contains(t, h.stdout.String(), "✓ Código de barras eliminado exitosamente")
	assert.Contains(t, h.stdout.String(), "No se encontraron codigos de barras.")
}
