package catalog

import (
	"context"
	"errors"
	"fmt"
)

// CreateProduct validates and inserts p. When p.BarcodeID is set the
// barcode must be active and not linked to another active product.
func (s *Service) CreateProduct(ctx context.Context, p *Product) (int64, error) {
	if p == nil {
		return 0, &ValidationError{Field: "Product", Reason: "El producto no puede ser nulo."}
	}
	if err := ValidateProduct(*p); err != nil {
		return 0, err
	}
	prevBarcode := p.Barcode
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if p.BarcodeID != nil {
			b, err := assignable(ctx, tx, *p.BarcodeID, 0)
			if err != nil {
				return err
			}
			p.Barcode = &b
		}
		return wrap("insert product", tx.Products().Insert(ctx, p))
	})
	if err != nil {
		p.ID, p.Barcode = 0, prevBarcode
		return 0, wrap("create product", err)
	}
	return p.ID, nil
}

// CreateProductWithBarcode inserts a new barcode and a product linked to it
// in one transaction. Either both rows are committed or neither is.
func (s *Service) CreateProductWithBarcode(ctx context.Context, p *Product, b *Barcode) error {
	if p == nil {
		return &ValidationError{Field: "Product", Reason: "El producto no puede ser nulo."}
	}
	if b == nil {
		return &ValidationError{Field: "Barcode", Reason: "El código de barras no puede ser nulo."}
	}
	if err := ValidateProduct(*p); err != nil {
		return err
	}
	if err := ValidateBarcode(*b); err != nil {
		return err
	}
	prevBarcodeID, prevBarcode := p.BarcodeID, p.Barcode
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := insertBarcode(ctx, tx.Barcodes(), b); err != nil {
			return err
		}
		id := b.ID
		p.BarcodeID = &id
		p.Barcode = b
		return wrap("insert product", tx.Products().Insert(ctx, p))
	})
	if err != nil {
		p.ID, b.ID = 0, 0
		p.BarcodeID, p.Barcode = prevBarcodeID, prevBarcode
		return wrap("create product with barcode", err)
	}
	return nil
}

// UpdateProduct rewrites the scalar fields of an active product. The
// barcode link is changed through AssignBarcode only.
func (s *Service) UpdateProduct(ctx context.Context, p Product) error {
	if err := invalidID(p.ID); err != nil {
		return err
	}
	if err := ValidateProduct(p); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.Products().Update(ctx, p)
		if err != nil {
			return wrap("update product", err)
		}
		if n == 0 {
			return notFoundID(entityProduct, p.ID)
		}
		return nil
	})
	return wrap("update product", err)
}

// SoftDeleteProduct marks an active product deleted, reporting false
// without error when it was already deleted. Its barcode is left untouched.
func (s *Service) SoftDeleteProduct(ctx context.Context, id int64) (bool, error) {
	if err := invalidID(id); err != nil {
		return false, err
	}
	var changed bool
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		repo := tx.Products()
		n, err := repo.SoftDelete(ctx, id)
		if err != nil {
			return wrap("soft delete product", err)
		}
		if n > 0 {
			changed = true
			return nil
		}
		if _, err := repo.GetIncludingDeleted(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityProduct, id)
			}
			return wrap("get product", err)
		}
		return nil
	})
	if err != nil {
		return false, wrap("soft delete product", err)
	}
	return changed, nil
}

// RecoverProduct reactivates a deleted product. It fails with ErrNotDeleted
// when the product is active and with ErrBarcodeAssigned when its barcode
// now belongs to another active product.
func (s *Service) RecoverProduct(ctx context.Context, id int64) error {
	if err := invalidID(id); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		repo := tx.Products()
		current, err := repo.GetIncludingDeleted(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityProduct, id)
			}
			return wrap("get product", err)
		}
		if !current.Deleted {
			return fmt.Errorf("el producto con ID %d no está borrado: %w", id, ErrNotDeleted)
		}
		if current.BarcodeID != nil {
			if err := ensureUnassigned(ctx, repo, *current.BarcodeID, id); err != nil {
				return err
			}
		}
		n, err := repo.Recover(ctx, id)
		if err != nil {
			return wrap("recover product", err)
		}
		if n == 0 {
			return fmt.Errorf("el producto con ID %d no está borrado: %w", id, ErrNotDeleted)
		}
		return nil
	})
	return wrap("recover product", err)
}

// AssignBarcode links an existing active barcode to an active product,
// replacing any previous link.
func (s *Service) AssignBarcode(ctx context.Context, productID, barcodeID int64) error {
	if err := invalidID(productID); err != nil {
		return err
	}
	if err := invalidID(barcodeID); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.Products().Get(ctx, productID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityProduct, productID)
			}
			return wrap("get product", err)
		}
		if product.Barcode != nil && product.Barcode.ID == barcodeID {
			return nil
		}
		if _, err := assignable(ctx, tx, barcodeID, productID); err != nil {
			return err
		}
		n, err := tx.Products().SetBarcode(ctx, productID, barcodeID)
		if err != nil {
			return wrap("assign barcode", err)
		}
		if n == 0 {
			return notFoundID(entityProduct, productID)
		}
		return nil
	})
	return wrap("assign barcode", err)
}

// assignable loads an active barcode that no active product other than
// productID links to.
func assignable(ctx context.Context, tx TxRepository, barcodeID, productID int64) (Barcode, error) {
	b, err := tx.Barcodes().Get(ctx, barcodeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Barcode{}, notFoundID(entityBarcode, barcodeID)
		}
		return Barcode{}, wrap("get barcode", err)
	}
	if err := ensureUnassigned(ctx, tx.Products(), barcodeID, productID); err != nil {
		return Barcode{}, err
	}
	return b, nil
}

func ensureUnassigned(ctx context.Context, repo ProductRepository, barcodeID, productID int64) error {
	other, err := repo.FindActiveByBarcode(ctx, barcodeID, productID)
	switch {
	case err == nil:
		return fmt.Errorf("código de barras %d vinculado al producto %d: %w", barcodeID, other.ID, ErrBarcodeAssigned)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return wrap("find product by barcode", err)
	}
}

// GetProduct returns an active product with its barcode resolved.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, notFoundID(entityProduct, id)
	}
	p, err := s.store.Products().Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, notFoundID(entityProduct, id)
		}
		return Product{}, wrap("get product", err)
	}
	return p, nil
}

// GetProductByName returns the first active product whose name matches exactly.
func (s *Service) GetProductByName(ctx context.Context, name string) (Product, error) {
	p, err := s.store.Products().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, &NotFoundError{Entity: entityProduct, Key: fmt.Sprintf("con nombre %q", name)}
		}
		return Product{}, wrap("get product by name", err)
	}
	return p, nil
}

// ListProducts returns active products narrowed by filter.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, wrap("list products", err)
	}
	return FilterProducts(products, filter), nil
}

// SearchProductsByName prefers an exact name match and falls back to a
// case-insensitive substring search over every active product.
func (s *Service) SearchProductsByName(ctx context.Context, name string) ([]Product, error) {
	p, err := s.GetProductByName(ctx, name)
	if err == nil {
		return []Product{p}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.ListProducts(ctx, ProductFilter{Name: name})
}
