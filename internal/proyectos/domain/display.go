package domain

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for any optional field left empty.
const Placeholder = "—"

var esPrinter = message.NewPrinter(language.Spanish)

// Display returns s, or the placeholder when s is blank.
func Display(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// FormatEUR renders an amount with Spanish thousands grouping and no decimals.
func FormatEUR(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return esPrinter.Sprintf("%d", int64(math.Round(v)))
}

// NameOrDefault is the label used when a project lacks a name.
func NameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Sin nombre"
	}
	return name
}
