package console

import (
	"context"
	"fmt"

	"github.com/stockbook/stockbook/internal/catalog"
)

func (m *Menu) createBarcode(ctx context.Context) error {
	b, err := m.readBarcode()
	if err != nil {
		return err
	}
	if err := m.saveBarcode(ctx, &b, func(ctx context.Context) error {
		_, err := m.catalog.CreateBarcode(ctx, &b)
		return err
	}); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "**** Creado exitosamente ****"+formatBarcode(b))
	return nil
}

func (m *Menu) listBarcodes(ctx context.Context) error {
	var barcodes []catalog.Barcode
	if err := m.call(ctx, func(ctx context.Context) error {
		var err error
		barcodes, err = m.catalog.ListBarcodes(ctx)
		return err
	}); err != nil {
		return err
	}
	if len(barcodes) == 0 {
		fmt.Fprintln(m.out, "No se encontraron codigos de barras.")
		return nil
	}
	for _, b := range barcodes {
		fmt.Fprintln(m.out, formatBarcode(b))
	}
	fmt.Fprintf(m.out, "\nTotal: %d código(s) de barras\n", len(barcodes))
	return nil
}

func (m *Menu) fetchBarcode(ctx context.Context, id int64) (catalog.Barcode, error) {
	var b catalog.Barcode
	err := m.call(ctx, func(ctx context.Context) error {
		var err error
		b, err = m.catalog.GetBarcode(ctx, id)
		return err
	})
	return b, err
}

// updateBarcode keeps the assignment date.
func (m *Menu) updateBarcode(ctx context.Context) error {
	id, err := m.readID("ID del codigo de barras a actualizar")
	if err != nil {
		return err
	}
	b, err := m.fetchBarcode(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nEl Codigo de Barras a modificar es: %s - ID: %d\n", b.Value, b.ID)
	if b.Type, err = m.chooseBarcodeType(b.Type); err != nil {
		return err
	}
	if b.Value, err = m.keepText("Valor", b.Value); err != nil {
		return err
	}
	if b.Observations, err = m.keepText("Observaciones", b.Observations); err != nil {
		return err
	}
	if err := m.call(ctx, func(ctx context.Context) error {
		return m.catalog.UpdateBarcode(ctx, b)
	}); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\n✓ Codigo de barras actualizado exitosamente.")
	return nil
}

func (m *Menu) deleteBarcode(ctx context.Context) error {
	id, err := m.readID("Ingrese el ID del código de barras a eliminar")
	if err != nil {
		return err
	}
	b, err := m.fetchBarcode(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nEl código de barras a eliminar es: %s\n", b.Value)
	ok, err := m.confirm("¿Está seguro de que desea eliminar este código de barras?")
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
		changed, err = m.catalog.SoftDeleteBarcode(ctx, id)
		return err
	}); err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(m.out, "\nEl código de barras ya estaba eliminado.")
		return nil
	}
	fmt.Fprintln(m.out, "\n✓ Código de barras eliminado exitosamente")
	return nil
}

func (m *Menu) recoverBarcode(ctx context.Context) error {
	id, err := m.readID("Ingrese el ID del código de barras a recuperar")
	if err != nil {
		return err
	}
	if err := m.call(ctx, func(ctx context.Context) error {
		return m.catalog.RecoverBarcode(ctx, id)
	}); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ Código de barras con ID %d recuperado exitosamente\n", id)
	return nil
}
