package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockbook/stockbook/internal/catalog"
)

func (m *Menu) readProduct() (catalog.Product, error) {
	var p catalog.Product
	var err error
	if p.Name, err = m.readText("Nombre", 120, true); err != nil {
		return p, err
	}
	if p.Brand, err = m.readText("Marca (opcional)", 80, false); err != nil {
		return p, err
	}
	if p.Price, err = m.readDecimal("Precio"); err != nil {
		return p, err
	}
	if p.Weight, err = m.readDecimal("Peso"); err != nil {
		return p, err
	}
	if p.Stock, err = m.readInt("Stock"); err != nil {
		return p, err
	}
	p.Category, err = m.chooseCategory(true)
	return p, err
}

// readBarcode collects a new barcode dated today.
func (m *Menu) readBarcode() (catalog.Barcode, error) {
	var b catalog.Barcode
	var err error
	if b.Type, err = m.chooseBarcodeType(""); err != nil {
		return b, err
	}
	if b.Value, err = m.readText("Valor", 20, true); err != nil {
		return b, err
	}
	if b.Observations, err = m.readText("Observaciones (opcional)", 255, false); err != nil {
		return b, err
	}
	y, mo, d := m.now().Date()
	b.AssignedDate = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	return b, nil
}

func (m *Menu) createProduct(ctx context.Context) error {
	p, err := m.readProduct()
	if err != nil {
		return err
	}
	withBarcode, err := m.confirm("¿Desea agregar un codigo de barras?")
	if err != nil {
		return err
	}
	if !withBarcode {
		if err := m.call(ctx, func(ctx context.Context) error {
			_, err := m.catalog.CreateProduct(ctx, &p)
			return err
		}); err != nil {
			return err
		}
		fmt.Fprintf(m.out, "✓ Producto creado exitosamente: %s (ID %d)\n", p.Name, p.ID)
		return nil
	}

	b, err := m.readBarcode()
	if err != nil {
		return err
	}
	if err := m.saveBarcode(ctx, &b, func(ctx context.Context) error {
		return m.catalog.CreateProductWithBarcode(ctx, &p, &b)
	}); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "✓ Producto con código de barras creado exitosamente: %s (ID %d)\n", p.Name, p.ID)
	return nil
}

func (m *Menu) listProducts(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n**** LISTAR PRODUCTOS ****")
	fmt.Fprintln(m.out, "1. Listar todos los productos")
	fmt.Fprintln(m.out, "2. Listar por ID")
	fmt.Fprintln(m.out, "3. Listar por nombre")
	fmt.Fprintln(m.out, "4. Listar por categoría")
	fmt.Fprintln(m.out, "0. Volver al menú anterior")

	sub, err := m.readInt("Ingrese opción")
	if err != nil {
		return err
	}

	var products []catalog.Product
	switch sub {
	case 0:
		fmt.Fprintln(m.out, "\nVolviendo al menu principal...")
		return nil
	case 1:
		err = m.call(ctx, func(ctx context.Context) error {
			products, err = m.catalog.ListProducts(ctx, catalog.ProductFilter{})
			return err
		})
	case 2:
		id, rerr := m.readID("Ingrese el ID a buscar")
		if rerr != nil {
			return rerr
		}
		err = m.call(ctx, func(ctx context.Context) error {
			p, err := m.catalog.GetProduct(ctx, id)
			if err == nil {
				products = []catalog.Product{p}
			}
			return err
		})
		if errors.Is(err, catalog.ErrNotFound) {
			err = nil
		}
	case 3:
		name, rerr := m.readText("Nombre a buscar", 120, true)
		if rerr != nil {
			return rerr
		}
		err = m.call(ctx, func(ctx context.Context) error {
			products, err = m.catalog.SearchProductsByName(ctx, name)
			return err
		})
	case 4:
		category, rerr := m.chooseCategory(false)
		if rerr != nil {
			return rerr
		}
		fmt.Fprintf(m.out, "\nBuscando productos de la categoría: %s\n", category)
		err = m.call(ctx, func(ctx context.Context) error {
			products, err = m.catalog.ListProducts(ctx, catalog.ProductFilter{Category: category})
			return err
		})
	default:
		fmt.Fprintln(m.out, "Opción inválida.")
		return nil
	}
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(m.out, "No se encontraron productos.")
		return nil
	}
	fmt.Fprintln(m.out, "\n**** PRODUCTOS ENCONTRADOS ****")
	for _, p := range products {
		fmt.Fprintln(m.out, formatProduct(p))
	}
	fmt.Fprintf(m.out, "\nTotal: %d producto(s)\n", len(products))
	return nil
}

func (m *Menu) fetchProduct(ctx context.Context, id int64) (catalog.Product, error) {
	var p catalog.Product
	err := m.call(ctx, func(ctx context.Context) error {
		var err error
		p, err = m.catalog.GetProduct(ctx, id)
		return err
	})
	return p, err
}

func (m *Menu) updateProduct(ctx context.Context) error {
	id, err := m.readID("ID del producto a actualizar")
	if err != nil {
		return err
	}
	p, err := m.fetchProduct(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nEl producto a modificar es: %s - ID: %d\n", p.Name, p.ID)
	fmt.Fprintln(m.out, "Ingrese los datos nuevos (presione Enter para mantener el valor actual):")

	if p.Name, err = m.keepText("Nombre", p.Name); err != nil {
		return err
	}
	if p.Brand, err = m.keepText("Marca", p.Brand); err != nil {
		return err
	}
	if p.Price, err = m.keepDecimal("Precio", p.Price); err != nil {
		return err
	}
	if p.Weight, err = m.keepDecimal("Peso", p.Weight); err != nil {
		return err
	}
	if p.Stock, err = m.keepInt("Stock", p.Stock); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Categoria actual: %s\n", orNA(string(p.Category)))
	change, err := m.confirm("¿Desea cambiar la categoría?")
	if err != nil {
		return err
	}
	if change {
		if p.Category, err = m.chooseCategory(true); err != nil {
			return err
		}
	}

	if err := m.call(ctx, func(ctx context.Context) error {
		return m.catalog.UpdateProduct(ctx, p)
	}); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ Producto actualizado exitosamente: %s\n", p.Name)
	return nil
}

func (m *Menu) deleteProduct(ctx context.Context) error {
	id, err := m.readID("Ingrese el ID del producto a eliminar")
	if err != nil {
		return err
	}
	p, err := m.fetchProduct(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nEl producto a eliminar es: %s\n", p.Name)
	ok, err := m.confirm("¿Está seguro de que desea eliminar este producto?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(m.out, "\nEliminación cancelada.")
		return nil
	}
	var changed bool
	if err := m.call(ctx, func(ctx context.Context) error {
		var err error
		changed, err = m.catalog.SoftDeleteProduct(ctx, id)
		return err
	}); err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(m.out, "\nEl producto ya estaba eliminado.")
		return nil
	}
	fmt.Fprintln(m.out, "\n✓ Producto eliminado exitosamente")
	return nil
}

func (m *Menu) recoverProduct(ctx context.Context) error {
	id, err := m.readID("Ingrese el ID del producto a recuperar")
	if err != nil {
		return err
	}
	if err := m.call(ctx, func(ctx context.Context) error {
		return m.catalog.RecoverProduct(ctx, id)
	}); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ Producto con ID %d recuperado exitosamente\n", id)
	return nil
}

func (m *Menu) assignBarcode(ctx context.Context) error {
	productID, err := m.readID("ID del producto")
	if err != nil {
		return err
	}
	barcodeID, err := m.readID("ID del código de barras")
	if err != nil {
		return err
	}
	if err := m.call(ctx, func(ctx context.Context) error {
		return m.catalog.AssignBarcode(ctx, productID, barcodeID)
	}); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ Código de barras %d asignado al producto %d\n", barcodeID, productID)
	return nil
}
