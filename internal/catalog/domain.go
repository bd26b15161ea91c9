package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BarcodeType enumerates supported barcode symbologies.
type BarcodeType string

const (
	// BarcodeEAN13 is the 13 digit European Article Number.
	BarcodeEAN13 BarcodeType = "EAN13"
	// BarcodeEAN8 is the short 8 digit EAN.
	BarcodeEAN8 BarcodeType = "EAN8"
	// BarcodeUPC is the Universal Product Code.
	BarcodeUPC BarcodeType = "UPC"
)

// BarcodeTypes lists every barcode type in menu order.
var BarcodeTypes = []BarcodeType{BarcodeEAN13, BarcodeEAN8, BarcodeUPC}

// Valid reports whether t is one of the known barcode types.
func (t BarcodeType) Valid() bool {
	switch t {
	case BarcodeEAN13, BarcodeEAN8, BarcodeUPC:
		return true
	}
	return false
}

// ParseBarcodeType converts user or database text into a BarcodeType.
func ParseBarcodeType(s string) (BarcodeType, error) {
	t := BarcodeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("catalog: unknown barcode type %q", s)
	}
	return t, nil
}

// Category classifies products. The zero value means no category.
type Category string

const (
	CategoryFood       Category = "ALIMENTOS"
	CategoryDrinks     Category = "BEBIDAS"
	CategoryAppliances Category = "ELECTRODOMESTICOS"
	CategoryHardware   Category = "FERRETERIA"
	CategoryCleaning   Category = "LIMPIEZA"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryFood, CategoryDrinks, CategoryAppliances, CategoryHardware, CategoryCleaning}

// Valid reports whether c is a known category. The empty category is valid.
func (c Category) Valid() bool {
	switch c {
	case "", CategoryFood, CategoryDrinks, CategoryAppliances, CategoryHardware, CategoryCleaning:
		return true
	}
	return false
}

// Description returns the human label shown next to the category.
func (c Category) Description() string {
	switch c {
	case CategoryFood:
		return "Productos comestibles"
	case CategoryDrinks:
		return "Bebidas y líquidos"
	case CategoryAppliances:
		return "Dispositivos electrónicos"
	case CategoryHardware:
		return "Materiales de ferretería y construcción"
	case CategoryCleaning:
		return "Productos de limpieza y hogar"
	case "":
		return ""
	}
	return string(c)
}

// ParseCategory converts text into a Category. Blank input yields no category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("catalog: unknown category %q", s)
	}
	return c, nil
}

// Entity carries identity and the soft-delete marker shared by every record.
// ID is zero until the store assigns one on insert.
type Entity struct {
	ID      int64
	Deleted bool
}

// Persisted reports whether the store has assigned an id.
func (e Entity) Persisted() bool {
	return e.ID > 0
}

// Barcode is a product identifier. Value is unique among active barcodes.
type Barcode struct {
	Entity
	Type         BarcodeType `validate:"required,barcode_type"`
	Value        string      `validate:"notblank,max=20"`
	AssignedDate time.Time   `validate:"required"`
	Observations string      `validate:"max=255"`
}

// Product is a stock keeping unit with an optional barcode.
//
// BarcodeID is the stored reference. Barcode is the resolved record and is
// nil when no barcode is linked or the linked one has been soft-deleted.
type Product struct {
	Entity
	Name      string          `validate:"notblank,max=120"`
	Brand     string          `validate:"max=80"`
	Category  Category        `validate:"category"`
	Price     decimal.Decimal `validate:"decimal_range=0 99999999.99,decimal_scale=2"`
	Weight    decimal.Decimal `validate:"decimal_range=0 9999999.999,decimal_scale=3"`
	Stock     int             `validate:"gte=0,lte=2147483647"`
	BarcodeID *int64          `validate:"-"`
	Barcode   *Barcode        `validate:"-"`
}

// HasBarcode reports whether the product resolves to an active barcode.
func (p Product) HasBarcode() bool {
	return p.Barcode != nil
}

// ProductFilter narrows a product listing held in memory.
type ProductFilter struct {
	Name     string
	Category Category
}
