package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockbook/stockbook/internal/platform/db"
)

// Service owns validation and transaction boundaries for the catalog.
type Service struct {
	store Store
}

// NewService constructs Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// wrap passes domain errors through and tags everything else as a StoreError.
// A failed rollback is a store failure even when it carries a domain cause.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrRollback) {
		var se *StoreError
		if errors.As(err, &se) {
			return err
		}
		return storeErr(op, err)
	}
	for _, domain := range []error{ErrValidation, ErrDuplicate, ErrNotFound, ErrNotDeleted, ErrBarcodeAssigned, ErrStore} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return storeErr(op, err)
}

func invalidID(id int64) error {
	if id > 0 {
		return nil
	}
	return &ValidationError{Field: "ID", Reason: fmt.Sprintf("El ID debe ser mayor a 0 (recibido %d).", id)}
}

// insertBarcode checks value uniqueness and inserts b through repo, which
// must be bound to the caller's transaction.
func insertBarcode(ctx context.Context, repo BarcodeRepository, b *Barcode) error {
	if err := ensureUniqueValue(ctx, repo, b.Value, 0); err != nil {
		return err
	}
	if err := repo.Insert(ctx, b); err != nil {
		return wrap("insert barcode", err)
	}
	return nil
}

func ensureUniqueValue(ctx context.Context, repo BarcodeRepository, value string, excludeID int64) error {
	_, err := repo.FindActiveByValue(ctx, value, excludeID)
	switch {
	case err == nil:
		return &DuplicateValueError{Value: value}
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return wrap("find barcode by value", err)
	}
}

// CreateBarcode validates b, checks that no active barcode holds the same
// value and inserts it in one transaction. The assigned id is stored in b.
func (s *Service) CreateBarcode(ctx context.Context, b *Barcode) (int64, error) {
	if b == nil {
		return 0, &ValidationError{Field: "Barcode", Reason: "El código de barras no puede ser nulo."}
	}
	if err := ValidateBarcode(*b); err != nil {
		return 0, err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return insertBarcode(ctx, tx.Barcodes(), b)
	})
	if err != nil {
		b.ID = 0
		return 0, wrap("create barcode", err)
	}
	return b.ID, nil
}

// UpdateBarcode rewrites an active barcode. A changed value is checked
// against every other active barcode first.
func (s *Service) UpdateBarcode(ctx context.Context, b Barcode) error {
	if err := invalidID(b.ID); err != nil {
		return err
	}
	if err := ValidateBarcode(b); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		repo := tx.Barcodes()
		current, err := repo.Get(ctx, b.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityBarcode, b.ID)
			}
			return wrap("get barcode", err)
		}
		if current.Value != b.Value {
			if err := ensureUniqueValue(ctx, repo, b.Value, b.ID); err != nil {
				return err
			}
		}
		n, err := repo.Update(ctx, b)
		if err != nil {
			return wrap("update barcode", err)
		}
		if n == 0 {
			return notFoundID(entityBarcode, b.ID)
		}
		return nil
	})
	return wrap("update barcode", err)
}

// SoftDeleteBarcode marks an active barcode deleted. It reports false
// without error when the barcode was already deleted. Products pointing at
// it keep their reference, which resolves to no barcode until
// RecoverBarcode clears it.
func (s *Service) SoftDeleteBarcode(ctx context.Context, id int64) (bool, error) {
	if err := invalidID(id); err != nil {
		return false, err
	}
	var changed bool
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		repo := tx.Barcodes()
		n, err := repo.SoftDelete(ctx, id)
		if err != nil {
			return wrap("soft delete barcode", err)
		}
		if n > 0 {
			changed = true
			return nil
		}
		if _, err := repo.GetIncludingDeleted(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityBarcode, id)
			}
			return wrap("get barcode", err)
		}
		return nil
	})
	if err != nil {
		return false, wrap("soft delete barcode", err)
	}
	return changed, nil
}

// RecoverBarcode reactivates a deleted barcode. It fails with ErrNotDeleted
// when the barcode is active and with a DuplicateValueError when another
// active barcode took its value meanwhile. Products that pointed at it
// while deleted lose the reference and must be reassigned explicitly.
func (s *Service) RecoverBarcode(ctx context.Context, id int64) error {
	if err := invalidID(id); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		repo := tx.Barcodes()
		current, err := repo.GetIncludingDeleted(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundID(entityBarcode, id)
			}
			return wrap("get barcode", err)
		}
		if !current.Deleted {
			return fmt.Errorf("el código de barras con ID %d no está borrado: %w", id, ErrNotDeleted)
		}
		if err := ensureUniqueValue(ctx, repo, current.Value, id); err != nil {
			return err
		}
		if err := tx.Products().ClearBarcode(ctx, id); err != nil {
			return wrap("clear product barcode", err)
		}
		n, err := repo.Recover(ctx, id)
		if err != nil {
			var dup *DuplicateValueError
			if errors.As(err, &dup) {
				return &DuplicateValueError{Value: current.Value}
			}
			return wrap("recover barcode", err)
		}
		if n == 0 {
			return fmt.Errorf("el código de barras con ID %d no está borrado: %w", id, ErrNotDeleted)
		}
		return nil
	})
	return wrap("recover barcode", err)
}

// GetBarcode returns an active barcode by id.
func (s *Service) GetBarcode(ctx context.Context, id int64) (Barcode, error) {
	if id <= 0 {
		return Barcode{}, notFoundID(entityBarcode, id)
	}
	b, err := s.store.Barcodes().Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Barcode{}, notFoundID(entityBarcode, id)
		}
		return Barcode{}, wrap("get barcode", err)
	}
	return b, nil
}

// GetBarcodeByValue returns the active barcode holding value.
func (s *Service) GetBarcodeByValue(ctx context.Context, value string) (Barcode, error) {
	b, err := s.store.Barcodes().FindActiveByValue(ctx, value, 0)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Barcode{}, &NotFoundError{Entity: entityBarcode, Key: fmt.Sprintf("con valor %q", value)}
		}
		return Barcode{}, wrap("get barcode by value", err)
	}
	return b, nil
}

// ListBarcodes returns every active barcode ordered by id.
func (s *Service) ListBarcodes(ctx context.Context) ([]Barcode, error) {
	barcodes, err := s.store.Barcodes().List(ctx)
	if err != nil {
		return nil, wrap("list barcodes", err)
	}
	return barcodes, nil
}
