package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/stockbook/stockbook/internal/platform/db"
)

// memoryStore is a transactional in-memory Store. WithTx works on a copy
// of the state and swaps it in only when fn succeeds.
type memoryStore struct {
	state *memoryState

	// Error injection.
	txError            error
	insertProductError error
	commitError        error
	rollbackError      error

	txCount int
}

type memoryState struct {
	barcodes      map[int64]Barcode
	products      map[int64]Product
	nextBarcodeID int64
	nextProductID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: &memoryState{
		barcodes: make(map[int64]Barcode),
		products: make(map[int64]Product),
	}}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		barcodes:      make(map[int64]Barcode, len(s.barcodes)),
		products:      make(map[int64]Product, len(s.products)),
		nextBarcodeID: s.nextBarcodeID,
		nextProductID: s.nextProductID,
	}
	for id, b := range s.barcodes {
		c.barcodes[id] = b
	}
	for id, p := range s.products {
		c.products[id] = p
	}
	return c
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	m.txCount++
	work := m.state.clone()
	if err := fn(ctx, memoryTx{store: m, state: work}); err != nil {
		if m.rollbackError != nil {
			return fmt.Errorf("platform/db: %w: %w (cause: %w)", db.ErrRollback, m.rollbackError, err)
		}
		return err
	}
	if m.commitError != nil {
		return m.commitError
	}
	m.state = work
	return nil
}

func (m *memoryStore) Barcodes() BarcodeRepository {
	return memoryTx{store: m, state: m.state}.Barcodes()
}

func (m *memoryStore) Products() ProductRepository {
	return memoryTx{store: m, state: m.state}.Products()
}

type memoryTx struct {
	store *memoryStore
	state *memoryState
}

func (t memoryTx) Barcodes() BarcodeRepository { return memoryBarcodes(t) }
func (t memoryTx) Products() ProductRepository { return memoryProducts(t) }

type memoryBarcodes memoryTx

func (r memoryBarcodes) Insert(ctx context.Context, b *Barcode) error {
	for _, other := range r.state.barcodes {
		if !other.Deleted && other.Value == b.Value {
			return &DuplicateValueError{Value: b.Value}
		}
	}
	r.state.nextBarcodeID++
	b.ID = r.state.nextBarcodeID
	b.Deleted = false
	r.state.barcodes[b.ID] = *b
	return nil
}

func (r memoryBarcodes) Update(ctx context.Context, b Barcode) (int64, error) {
	current, ok := r.state.barcodes[b.ID]
	if !ok || current.Deleted {
		return 0, nil
	}
	b.Deleted = false
	r.state.barcodes[b.ID] = b
	return 1, nil
}

func (r memoryBarcodes) SoftDelete(ctx context.Context, id int64) (int64, error) {
	current, ok := r.state.barcodes[id]
	if !ok || current.Deleted {
		return 0, nil
	}
	current.Deleted = true
	r.state.barcodes[id] = current
	return 1, nil
}

func (r memoryBarcodes) Recover(ctx context.Context, id int64) (int64, error) {
	current, ok := r.state.barcodes[id]
	if !ok || !current.Deleted {
		return 0, nil
	}
	current.Deleted = false
	r.state.barcodes[id] = current
	return 1, nil
}

func (r memoryBarcodes) Get(ctx context.Context, id int64) (Barcode, error) {
	b, ok := r.state.barcodes[id]
	if !ok || b.Deleted {
		return Barcode{}, ErrNotFound
	}
	return b, nil
}

func (r memoryBarcodes) GetIncludingDeleted(ctx context.Context, id int64) (Barcode, error) {
	b, ok := r.state.barcodes[id]
	if !ok {
		return Barcode{}, ErrNotFound
	}
	return b, nil
}

func (r memoryBarcodes) List(ctx context.Context) ([]Barcode, error) {
	var out []Barcode
	for _, b := range r.state.barcodes {
		if !b.Deleted {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryBarcodes) FindActiveByValue(ctx context.Context, value string, excludeID int64) (Barcode, error) {
	for _, b := range r.state.barcodes {
		if !b.Deleted && b.Value == value && b.ID != excludeID {
			return b, nil
		}
	}
	return Barcode{}, ErrNotFound
}

type memoryProducts memoryTx

func (r memoryProducts) resolve(p Product) Product {
	p.Barcode = nil
	if p.BarcodeID != nil {
		if b, ok := r.state.barcodes[*p.BarcodeID]; ok && !b.Deleted {
			p.Barcode = &b
		}
	}
	return p
}

func (r memoryProducts) Insert(ctx context.Context, p *Product) error {
	if r.store.insertProductError != nil {
		return r.store.insertProductError
	}
	r.state.nextProductID++
	p.ID = r.state.nextProductID
	p.Deleted = false
	stored := *p
	stored.Barcode = nil
	r.state.products[p.ID] = stored
	return nil
}

func (r memoryProducts) Update(ctx context.Context, p Product) (int64, error) {
	current, ok := r.state.products[p.ID]
	if !ok || current.Deleted {
		return 0, nil
	}
	current.Name, current.Brand, current.Category = p.Name, p.Brand, p.Category
	current.Price, current.Weight, current.Stock = p.Price, p.Weight, p.Stock
	r.state.products[p.ID] = current
	return 1, nil
}

func (r memoryProducts) SoftDelete(ctx context.Context, id int64) (int64, error) {
	current, ok := r.state.products[id]
	if !ok || current.Deleted {
		return 0, nil
	}
	current.Deleted = true
	r.state.products[id] = current
	return 1, nil
}

func (r memoryProducts) Recover(ctx context.Context, id int64) (int64, error) {
	current, ok := r.state.products[id]
	if !ok || !current.Deleted {
		return 0, nil
	}
	current.Deleted = false
	r.state.products[id] = current
	return 1, nil
}

func (r memoryProducts) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.state.products[id]
	if !ok || p.Deleted {
		return Product{}, ErrNotFound
	}
	return r.resolve(p), nil
}

func (r memoryProducts) GetIncludingDeleted(ctx context.Context, id int64) (Product, error) {
	p, ok := r.state.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return r.resolve(p), nil
}

func (r memoryProducts) GetByName(ctx context.Context, name string) (Product, error) {
	list, _ := r.List(ctx)
	for _, p := range list {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r memoryProducts) List(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.state.products {
		if !p.Deleted {
			out = append(out, r.resolve(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryProducts) SetBarcode(ctx context.Context, productID, barcodeID int64) (int64, error) {
	current, ok := r.state.products[productID]
	if !ok || current.Deleted {
		return 0, nil
	}
	id := barcodeID
	current.BarcodeID = &id
	r.state.products[productID] = current
	return 1, nil
}

func (r memoryProducts) ClearBarcode(ctx context.Context, barcodeID int64) error {
	for id, p := range r.state.products {
		if p.BarcodeID != nil && *p.BarcodeID == barcodeID {
			p.BarcodeID = nil
			r.state.products[id] = p
		}
	}
	return nil
}

func (r memoryProducts) FindActiveByBarcode(ctx context.Context, barcodeID, excludeID int64) (Product, error) {
	for _, p := range r.state.products {
		if !p.Deleted && p.ID != excludeID && p.BarcodeID != nil && *p.BarcodeID == barcodeID {
			return r.resolve(p), nil
		}
	}
	return Product{}, ErrNotFound
}

var errInjected = errors.New("injected failure")
