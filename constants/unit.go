package constants

import (
	"strings"
)

// Canonical unit short forms.
const (
	UnitKg    = "kg"
	UnitTon   = "t"
	UnitCubic = "m³"
	UnitLiter = "L"
	UnitPiece = "un"
)

var unitSynonyms = map[string]string{
	"kg":        UnitKg,
	"kgs":       UnitKg,
	"quilo":     UnitKg,
	"quilos":    UnitKg,
	"t":         UnitTon,
	"ton":       UnitTon,
	"tons":      UnitTon,
	"tonelada":  UnitTon,
	"toneladas": UnitTon,
	"m3":        UnitCubic,
	"m³":        UnitCubic,
	"l":         UnitLiter,
	"lt":        UnitLiter,
	"litro":     UnitLiter,
	"litros":    UnitLiter,
	"un":        UnitPiece,
	"und":       UnitPiece,
	"unid":      UnitPiece,
	"unidade":   UnitPiece,
	"unidades":  UnitPiece,
	"pç":        UnitPiece,
	"pc":        UnitPiece,
	"peça":      UnitPiece,
	"peças":     UnitPiece,
}

// CanonicalUnit maps a unit as printed to its canonical short form.
// Unknown units are returned unchanged with ok=false.
func CanonicalUnit(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	if u, ok := unitSynonyms[strings.ToLower(trimmed)]; ok {
		return u, true
	}
	return trimmed, false
}
