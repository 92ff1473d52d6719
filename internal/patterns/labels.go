package patterns

import (
	"regexp"
	"strings"
)

// Label names a field label printed inside an item block.
type Label string

const (
	LabelOrigin      Label = "origem"
	LabelClass       Label = "classe"
	LabelState       Label = "estado_fisico"
	LabelOrganic     Label = "oii"
	LabelQuantity    Label = "qtde"
	LabelComposition Label = "composicao"
	LabelMethod      Label = "metodo"
	LabelAppearance  Label = "cor_cheiro_aspecto"
	LabelPackaging   Label = "acondicionamento"
	LabelDestination Label = "destino"
)

// Go regexp has no lookahead, so values are cut at the start of the next
// known label instead.
var labelRes = map[Label]*regexp.Regexp{
	LabelOrigin:      regexp.MustCompile(`(?i)\bOrigem\s*:`),
	LabelClass:       regexp.MustCompile(`(?i)\bClasse\s*:`),
	LabelState:       regexp.MustCompile(`(?i)\bEstado\s+F[íi]sico\s*:`),
	LabelOrganic:     regexp.MustCompile(`\bO/?I{1,2}\s*:`),
	LabelQuantity:    regexp.MustCompile(`(?i)\bQtde\.?\s*:`),
	LabelComposition: regexp.MustCompile(`(?i)\bComposi[çc][ãa]o\s+Aproximada\s*:`),
	LabelMethod:      regexp.MustCompile(`(?i)\bM[ée]todo\s+Utilizado\s*:`),
	LabelAppearance:  regexp.MustCompile(`(?i)\bCor[,.]?\s*Cheiro[,.]?\s*Aspecto\s*:`),
	LabelPackaging:   regexp.MustCompile(`(?i)\bAcondicionamento\s*:`),
	LabelDestination: regexp.MustCompile(`(?i)\bDestino\s*:`),
}

// Labels in printed order.
var Labels = []Label{
	LabelOrigin, LabelClass, LabelState, LabelOrganic, LabelQuantity,
	LabelComposition, LabelMethod, LabelAppearance, LabelPackaging, LabelDestination,
}

// LabelRe returns the pattern for a label.
func LabelRe(l Label) *regexp.Regexp { return labelRes[l] }

// NextLabel returns the start of the earliest label at or after from, or len(text).
func NextLabel(text string, from int) int {
	best := len(text)
	if from >= len(text) {
		return best
	}
	rest := text[from:]
	for _, re := range labelRes {
		if loc := re.FindStringIndex(rest); loc != nil && from+loc[0] < best {
			best = from + loc[0]
		}
	}
	return best
}

// LabelValue returns the text after label up to the next known label, trimmed.
func LabelValue(text string, l Label) (string, bool) {
	loc := labelRes[l].FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	end := NextLabel(text, loc[1])
	if stop := sectionStop.FindStringIndex(text[loc[1]:end]); stop != nil {
		end = loc[1] + stop[0]
	}
	v := strings.TrimSpace(text[loc[1]:end])
	return v, v != ""
}

// CutAtLabel trims s at the first known label.
func CutAtLabel(s string) string {
	return strings.TrimSpace(s[:NextLabel(s, 0)])
}
