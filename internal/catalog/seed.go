package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SampleItem pairs a product with the barcode it is created with.
type SampleItem struct {
	Product Product
	Barcode Barcode
}

type sampleRow struct {
	name, brand   string
	category      Category
	price, weight string
	stock         int
	value         string
	day           int
	observations  string
}

var sampleRows = []sampleRow{
	{"Leche Entera", "La Serenísima", CategoryFood, "2.50", "1.0", 45, "7791234567890", 15, "Lote L123"},
	{"Pan de Molde", "Bimbo", CategoryFood, "1.80", "0.5", 32, "7791234567891", 16, "Pan integral"},
	{"Arroz Largo Fino", "Gallo", CategoryFood, "3.20", "1.0", 67, "7791234567892", 17, "Arroz premium"},
	{"Fideos Tallarín", "Matarazzo", CategoryFood, "1.90", "0.5", 54, "7791234567910", 18, "Harina trigo"},
	{"Galletas de Agua", "Terrabusi", CategoryFood, "2.10", "0.4", 28, "7791234567911", 19, "Pack x 300g"},
	{"Aceite de Girasol", "Natura", CategoryFood, "4.80", "1.0", 39, "7791234567912", 20, "Aceite refinado"},
	{"Yogur Bebible", "La Serenísima", CategoryFood, "1.20", "0.2", 72, "7791234567913", 21, "Sabor frutilla"},
	{"Queso Cremoso", "Sancor", CategoryFood, "5.40", "0.3", 23, "7791234567914", 22, "Queso untable"},
	{"Agua Mineral", "Villavicencio", CategoryDrinks, "1.50", "1.5", 88, "7791234567893", 23, "Agua sin gas"},
	{"Coca-Cola", "Coca-Cola", CategoryDrinks, "2.80", "2.25", 56, "7791234567894", 24, "Gaseosa cola"},
	{"Jugo de Naranja", "Cepita", CategoryDrinks, "2.10", "1.0", 41, "7791234567895", 25, "Jugo natural"},
	{"Cerveza Rubia", "Quilmes", CategoryDrinks, "3.50", "0.7", 95, "7791234567915", 26, "Lata 473ml"},
	{"Licuadora", "Philips", CategoryAppliances, "89.90", "2.5", 12, "7791234567900", 27, "600W vaso vidrio"},
	{"Tostadora", "Atma", CategoryAppliances, "45.30", "1.8", 18, "7791234567901", 28, "2 ranuras"},
	{"Ventilador de Pie", "Liliana", CategoryAppliances, "67.80", "3.2", 7, "7791234567916", 29, "3 velocidades"},
	{"Martillo de Carpintero", "Truper", CategoryHardware, "15.60", "0.6", 34, "7791234567902", 30, "Mango fibra"},
	{"Destornillador Plano", "Stanley", CategoryHardware, "8.90", "0.1", 67, "7791234567903", 31, "Punta 6mm"},
	{"Cinta Métrica", "Irwin", CategoryHardware, "12.40", "0.3", 29, "7791234567917", 32, "5 metros"},
	{"Detergente Líquido", "Ala", CategoryCleaning, "5.60", "1.1", 78, "7791234567906", 33, "Ropa color"},
	{"Lavandina", "Ayudín", CategoryCleaning, "3.20", "1.0", 63, "7791234567907", 34, "Desinfectante"},
}

// SampleCatalog returns demo products, each with its own EAN13 barcode.
func SampleCatalog() []SampleItem {
	items := make([]SampleItem, 0, len(sampleRows))
	for _, r := range sampleRows {
		items = append(items, SampleItem{
			Product: Product{
				Name:     r.name,
				Brand:    r.brand,
				Category: r.category,
				Price:    decimal.RequireFromString(r.price),
				Weight:   decimal.RequireFromString(r.weight),
				Stock:    r.stock,
			},
			Barcode: Barcode{
				Type:  BarcodeEAN13,
				Value: r.value,
				// Day offsets past January roll over into February.
				AssignedDate: time.Date(2024, time.January, r.day, 0, 0, 0, 0, time.UTC),
				Observations: r.observations,
			},
		})
	}
	return items
}

// SeedResult counts what Seed did.
type SeedResult struct {
	Created int
	Skipped int
}

// Seed loads items through CreateProductWithBarcode. Items whose barcode
// value is already active are skipped; any other failure stops the run.
func (s *Service) Seed(ctx context.Context, items []SampleItem) (SeedResult, error) {
	var res SeedResult
	for i := range items {
		p, b := items[i].Product, items[i].Barcode
		err := s.CreateProductWithBarcode(ctx, &p, &b)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, ErrDuplicate):
			res.Skipped++
		default:
			return res, err
		}
	}
	return res, nil
}
