package console

import (
	"strconv"
	"strings"

	"github.com/stockbook/stockbook/internal/catalog"
)

const dateLayout = "2006-01-02"

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// formatProduct renders p with its barcode, or a placeholder when none
// resolves.
func formatProduct(p catalog.Product) string {
	var sb strings.Builder
	sb.WriteString("\n" + strings.Repeat(".", 40))
	sb.WriteString("\nPRODUCTO: ")
	sb.WriteString("\n - ID: " + strconv.FormatInt(p.ID, 10))
	sb.WriteString("\n - Nombre: " + p.Name)
	sb.WriteString("\n - Marca: " + orNA(p.Brand))
	sb.WriteString("\n - Categoria: " + orNA(string(p.Category)))
	sb.WriteString("\n - Precio: " + p.Price.StringFixed(2))
	sb.WriteString("\n - Peso: " + p.Weight.StringFixed(3))
	sb.WriteString("\n - Stock: " + strconv.Itoa(p.Stock))
	if p.Barcode != nil {
		sb.WriteString(formatBarcode(*p.Barcode))
	} else {
		sb.WriteString("\n---\nCódigo de barras: No asignado")
	}
	return sb.String()
}

func formatBarcode(b catalog.Barcode) string {
	obs := b.Observations
	if strings.TrimSpace(obs) == "" {
		obs = "(sin observaciones)"
	}
	return "\n---\nCódigo de barras:" +
		"\n - ID: " + strconv.FormatInt(b.ID, 10) +
		"\n - Tipo: " + string(b.Type) +
		"\n - Valor: " + b.Value +
		"\n - Fecha de asignacion: " + b.AssignedDate.Format(dateLayout) +
		"\n - Observaciones: " + obs
}
