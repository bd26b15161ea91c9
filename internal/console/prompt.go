package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/catalog"
)

// inputError marks a failure reading Stdin, which ends the menu.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return "console: read input: " + e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func isInputErr(err error) bool {
	var ie *inputError
	return errors.Is(err, io.EOF) || errors.As(err, &ie)
}

// readLine prints prompt and returns the next trimmed line. It returns
// io.EOF once Stdin is exhausted.
func (m *Menu) readLine(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", &inputError{err: err}
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// readText asks until the answer fits in limit characters. Blank answers are
// accepted only when required is false.
func (m *Menu) readText(label string, limit int, required bool) (string, error) {
	for {
		s, err := m.readLine(label + ": ")
		if err != nil {
			return "", err
		}
		switch {
		case s == "" && required:
			fmt.Fprintln(m.out, "El campo no puede estar vacío.")
		case utf8.RuneCountInString(s) > limit:
			fmt.Fprintf(m.out, "El campo admite como máximo %d caracteres.\n", limit)
		default:
			return s, nil
		}
	}
}

// readInt asks until the answer is a non-negative integer.
func (m *Menu) readInt(label string) (int, error) {
	for {
		s, err := m.readLine(label + ": ")
		if err != nil {
			return 0, err
		}
		n, ok := m.parseInt(s)
		if ok {
			return n, nil
		}
	}
}

func (m *Menu) parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintln(m.out, "Solo admite caracteres numericos.")
		return 0, false
	}
	if n < 0 {
		fmt.Fprintln(m.out, "*ERROR. No puede ser un número negativo.")
		return 0, false
	}
	return n, true
}

// errBack is returned when the user answers 0 to an id prompt.
var errBack = errors.New("console: back to main menu")

// readID asks for a record id. Answering 0 returns errBack.
func (m *Menu) readID(label string) (int64, error) {
	n, err := m.readInt(label + " (0 para volver)")
	if err == nil && n == 0 {
		return 0, errBack
	}
	return int64(n), err
}

// readDecimal asks until the answer is a non-negative number. A comma is
// accepted as decimal separator.
func (m *Menu) readDecimal(label string) (decimal.Decimal, error) {
	for {
		s, err := m.readLine(label + ": ")
		if err != nil {
			return decimal.Zero, err
		}
		d, ok := m.parseDecimal(s)
		if ok {
			return d, nil
		}
	}
}

func (m *Menu) parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		fmt.Fprintln(m.out, "Debe ingresar un número válido.")
		return decimal.Zero, false
	}
	if d.IsNegative() {
		fmt.Fprintln(m.out, "*ERROR. No puede ser un número negativo.")
		return decimal.Zero, false
	}
	return d, true
}

// keepText shows current and returns it unchanged when the answer is blank.
func (m *Menu) keepText(label, current string) (string, error) {
	s, err := m.readLine(fmt.Sprintf("%s actual (Enter para mantener): %s\nO ingrese el nuevo valor: ", label, current))
	if err != nil || s == "" {
		return current, err
	}
	return s, nil
}

func (m *Menu) keepDecimal(label string, current decimal.Decimal) (decimal.Decimal, error) {
	for {
		s, err := m.keepText(label, current.String())
		if err != nil {
			return current, err
		}
		if s == current.String() {
			return current, nil
		}
		if d, ok := m.parseDecimal(s); ok {
			return d, nil
		}
	}
}

func (m *Menu) keepInt(label string, current int) (int, error) {
	for {
		s, err := m.keepText(label, strconv.Itoa(current))
		if err != nil {
			return current, err
		}
		if n, ok := m.parseInt(s); ok {
			return n, nil
		}
	}
}

// confirm reports whether the answer is "s" in any case.
func (m *Menu) confirm(question string) (bool, error) {
	s, err := m.readLine(question + ` (ingrese "s" para Si o cualquier otro caracter para no): `)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(s, "s"), nil
}

// choose lists labels numbered from 1 and returns the picked index. With
// zeroLabel set, 0 is offered as well and yields -1.
func (m *Menu) choose(title string, labels []string, zeroLabel string) (int, error) {
	fmt.Fprintln(m.out, "\n"+title)
	for i, l := range labels {
		fmt.Fprintf(m.out, "%d). %s\n", i+1, l)
	}
	if zeroLabel != "" {
		fmt.Fprintf(m.out, "0). %s\n", zeroLabel)
	}
	low := 1
	if zeroLabel != "" {
		low = 0
	}
	for {
		s, err := m.readLine("Opción: ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			fmt.Fprintln(m.out, "Ingrese un número válido.")
			continue
		}
		if n < low || n > len(labels) {
			fmt.Fprintf(m.out, "La opción debe estar entre %d y %d\n", low, len(labels))
			continue
		}
		return n - 1, nil
	}
}

// chooseCategory offers every category. With allowNone, option 0 clears it.
func (m *Menu) chooseCategory(allowNone bool) (catalog.Category, error) {
	labels := make([]string, len(catalog.Categories))
	for i, c := range catalog.Categories {
		labels[i] = fmt.Sprintf("%s - %s", c, c.Description())
	}
	zero := ""
	if allowNone {
		zero = "Sin categoría"
	}
	idx, err := m.choose("Seleccione una opción para la categoría:", labels, zero)
	if err != nil || idx < 0 {
		return "", err
	}
	return catalog.Categories[idx], nil
}

// chooseBarcodeType offers every type. A non-empty current type is kept on 0.
func (m *Menu) chooseBarcodeType(current catalog.BarcodeType) (catalog.BarcodeType, error) {
	labels := make([]string, len(catalog.BarcodeTypes))
	for i, t := range catalog.BarcodeTypes {
		labels[i] = string(t)
	}
	zero := ""
	if current != "" {
		zero = fmt.Sprintf("Mantener %s", current)
	}
	idx, err := m.choose("Seleccione el tipo de Código de Barras:", labels, zero)
	if err != nil || idx < 0 {
		return current, err
	}
	return catalog.BarcodeTypes[idx], nil
}
