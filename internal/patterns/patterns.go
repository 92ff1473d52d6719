// Package patterns holds the versioned regular expressions used to read
// CETESB waste-movement certificates. Everything here is pure data plus
// small matching helpers; no state.
package patterns

import (
	"regexp"
	"unicode/utf8"
)

// Version is bumped whenever a pattern changes in a way that can alter output.
const Version = "2025.10.1"

// Windows are measured in characters (runes), never bytes.

// BlockWindow bounds the last item block when no next anchor exists.
const BlockWindow = 2000

// SectionWindow bounds a residues section found by a section marker.
const SectionWindow = 3000

// EntityWindow bounds an entity section after its heading.
const EntityWindow = 1500

// MaxFragment bounds raw fragments and descriptions.
const MaxFragment = 500

var (
	// ItemAnchor matches "01 Resíduo : D099 - description". The code is captured
	// loosely so malformed codes still produce blocks for the normalizer to reject.
	ItemAnchor = regexp.MustCompile(`\b(\d{1,2})[ \t]*\n?[ \t]*(?i:Res[íi]duo)\s*:\s*([A-Za-z0-9./]+)[ \t]*[-–][ \t]*([^\n]*)`)

	// RelaxedAnchor has no index and tolerates a space inside the code ("D 099").
	RelaxedAnchor = regexp.MustCompile(`(?i:Res[íi]duo)\s*:?\s*([A-Z]\s?\d{3})\b\s*[-–]?[ \t]*([^\n]*)`)

	// ResidueCode is the current code shape. LegacyCode is the dotted XX.XX.XXX form.
	ResidueCode      = regexp.MustCompile(`^[A-Z]\d{3}$`)
	LegacyCode       = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{3}$`)
	LooseLegacyCode  = regexp.MustCompile(`\b(\d{2}[ .]?\d{2}[ .]?\d{3})\b`)
	PackagingCode    = regexp.MustCompile(`\bE\d{2}\b`)
	nonDigit         = regexp.MustCompile(`\D`)
	upperRun         = regexp.MustCompile(`\s\p{Lu}{3,}`)
	letterhead       = regexp.MustCompile(`(?i)^\s*GOVERNO\s+DO\s+ESTADO\s+DE\s+S[ÃA]O\s+PAULO\s*$`)
	footer           = regexp.MustCompile(`(?i)^\s*P[áa]g\.?\s*\d+\s*/\s*\d+\s*$`)
	pageMarker       = regexp.MustCompile(`^\s*--- PÁGINA \d+ ---\s*$`)
	sectionStop      = regexp.MustCompile(`(?i)Este\s+certificado`)
	entityHeadingAny = regexp.MustCompile(`(?i)ENTIDADE\s+(?:GERADORA|DE\s+DESTINA[ÇC][ÃA]O)`)
)

// SectionMarkers introduce a residues list in layouts without item anchors.
var SectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)RES[ÍI]DUOS\s+AUTORIZADOS`),
	regexp.MustCompile(`(?i)RELA[ÇC][ÃA]O\s+DE\s+RES[ÍI]DUOS`),
	regexp.MustCompile(`(?i)RES[ÍI]DUOS\s+CLASSE`),
	regexp.MustCompile(`(?i)C[ÓO]DIGO.*DESCRI[ÇC][ÃA]O.*QUANTIDADE`),
	regexp.MustCompile(`(?i)ITEM.*RES[ÍI]DUO.*CLASSE`),
	regexp.MustCompile(`(?i)RES[ÍI]DUOS\s+A\s+SEREM\s+TRATADOS`),
	regexp.MustCompile(`(?i)LISTA\s+DE\s+RES[ÍI]DUOS`),
}

// IsLetterhead reports whether a line opens page-break boilerplate.
func IsLetterhead(line string) bool { return letterhead.MatchString(line) }

// IsFooter reports whether a line closes page-break boilerplate.
func IsFooter(line string) bool { return footer.MatchString(line) }

// IsPageMarker reports whether a line is a page marker inserted at concatenation.
func IsPageMarker(line string) bool { return pageMarker.MatchString(line) }

// NormalizeLegacyCode turns "12 34 567" or "1234567" into "12.34.567".
// Anything without exactly seven digits is returned unchanged.
func NormalizeLegacyCode(code string) string {
	digits := nonDigit.ReplaceAllString(code, "")
	if len(digits) != 7 {
		return code
	}
	return digits[:2] + "." + digits[2:4] + "." + digits[4:]
}

// FindSection returns the text following the first section marker, bounded by SectionWindow.
func FindSection(text string) (string, bool) {
	start, ok := SectionStart(text)
	if !ok {
		return "", false
	}
	return text[start:WindowEnd(text, start, SectionWindow)], true
}

// WindowEnd returns the byte offset n characters after start, or len(text)
// when the text is shorter. The result always falls on a rune boundary.
func WindowEnd(text string, start, n int) int {
	i := start
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// SectionStart returns the offset of the first section marker, trying the
// markers in order.
func SectionStart(text string) (int, bool) {
	for _, re := range SectionMarkers {
		if loc := re.FindStringIndex(text); loc != nil {
			return loc[0], true
		}
	}
	return 0, false
}

// CutAtUpperRun cuts s before the first run of three or more capitals that
// follows whitespace, so a trailing heading does not leak into a description.
func CutAtUpperRun(s string) string {
	if loc := upperRun.FindStringIndex(s); loc != nil && loc[0] > 0 {
		return s[:loc[0]]
	}
	return s
}

// StopIndex returns the first offset at or after from where an entity heading,
// the certificate closing sentence, or an item anchor begins; len(text) if none.
func StopIndex(text string, from int) int {
	best := len(text)
	rest := text[from:]
	for _, re := range []*regexp.Regexp{entityHeadingAny, sectionStop, ItemAnchor} {
		if loc := re.FindStringIndex(rest); loc != nil && from+loc[0] < best {
			best = from + loc[0]
		}
	}
	return best
}
