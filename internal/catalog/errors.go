package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrNotFound   = errors.New("resource not found")
	ErrStore      = errors.New("store failure")

	// ErrNotDeleted is returned when recovering a row that is still active.
	ErrNotDeleted = errors.New("record is not deleted")
	// ErrBarcodeAssigned is returned when a barcode is already linked to another active product.
	ErrBarcodeAssigned = errors.New("barcode already assigned to another product")
)

// ValidationError reports the first field that violates a constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateValueError reports an active barcode already holding Value.
type DuplicateValueError struct {
	Value string
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("ya existe un código de barras activo con el valor %q", e.Value)
}

// Is makes DuplicateValueError match ErrDuplicate.
func (e *DuplicateValueError) Is(target error) bool {
	return target == ErrDuplicate
}

// NotFoundError reports a lookup that matched no active row.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.Key)
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFoundID(entity string, id int64) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprintf("con ID %d", id)}
}

// StoreError wraps a driver or I/O failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes StoreError match ErrStore.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

const (
	entityProduct = "producto"
	entityBarcode = "código de barras"
)
