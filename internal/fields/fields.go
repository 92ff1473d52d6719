// Package fields reads the per-item fields out of one item block.
package fields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/patterns"
	"github.com/joseph-ayodele/cadri-extractor/internal/segment"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

var (
	dashAfterCode = regexp.MustCompile(`^\s*[-–]\s*`)
	trailingPunct = regexp.MustCompile(`[\s,;|]+$`)
)

// Extract builds a raw item from a block. Fields that do not match stay nil;
// the code is copied as printed and validated later by the normalizer.
func Extract(documentID string, b segment.ItemBlock) entity.WasteItem {
	text := b.Text
	item := entity.WasteItem{
		DocumentID:  documentID,
		ItemIndex:   PadIndex(b.Index),
		ResidueCode: utils.NilIfEmpty(b.Code),
		Description: utils.NilIfEmpty(b.Description),
		RawFragment: utils.NilIfEmpty(utils.TruncateRunes(utils.CollapseSpaces(text), patterns.MaxFragment, "...")),
	}
	if b.Page > 0 {
		item.SourcePage = utils.Ptr(b.Page)
	}

	Characteristics(text, &item)

	item.Origin = labelled(text, patterns.LabelOrigin)
	item.Composition = labelled(text, patterns.LabelComposition)
	item.Method = labelled(text, patterns.LabelMethod)
	item.Appearance = labelled(text, patterns.LabelAppearance)

	item.PackagingCodes, item.PackagingDescriptions = Packaging(text)
	item.DestinationCode, item.DestinationDescription = Destination(text)
	return item
}

// Characteristics fills class, physical state, O/I flag, quantity and unit.
// The compound line is tried first; each field falls back to its own pattern.
func Characteristics(text string, item *entity.WasteItem) {
	if m := patterns.Compound.FindStringSubmatch(text); m != nil {
		item.Class = utils.Ptr(m[1])
		item.PhysicalState = utils.Ptr(strings.ToUpper(m[2]))
		item.OrganicFlag = utils.Ptr(m[3])
		item.Quantity = utils.Ptr(NormalizeDecimal(m[4]))
		item.Unit = utils.Ptr(m[5])
		return
	}

	if m := patterns.Class.FindStringSubmatch(text); m != nil {
		item.Class = utils.Ptr(strings.ReplaceAll(m[1], " ", ""))
	}
	if m := patterns.State.FindStringSubmatch(text); m != nil {
		item.PhysicalState = utils.Ptr(strings.ToUpper(m[1]))
	}
	if m := patterns.Organic.FindStringSubmatch(text); m != nil {
		item.OrganicFlag = utils.Ptr(m[1])
	}
	if m := patterns.Quantity.FindStringSubmatch(text); m != nil {
		item.Quantity = utils.Ptr(NormalizeDecimal(m[1]))
		item.Unit = utils.NilIfEmpty(m[2])
	}
}

// Packaging returns every E## code in first-seen order with the description
// printed after "E## -", aligned by position ("" when none).
func Packaging(text string) ([]string, []string) {
	locs := patterns.PackagingCode.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil, nil
	}
	var codes []string
	descs := map[string]string{}
	for i, loc := range locs {
		code := text[loc[0]:loc[1]]
		if _, seen := descs[code]; !seen {
			codes = append(codes, code)
			descs[code] = ""
		}
		if descs[code] != "" {
			continue
		}
		dash := dashAfterCode.FindStringIndex(text[loc[1]:])
		if dash == nil {
			continue
		}
		start := loc[1] + dash[1]
		end := patterns.NextLabel(text, start)
		if i+1 < len(locs) && locs[i+1][0] < end {
			end = locs[i+1][0]
		}
		if nl := strings.IndexByte(text[start:end], '\n'); nl >= 0 {
			end = start + nl
		}
		desc := patterns.CutAtUpperRun(text[start:end])
		descs[code] = trailingPunct.ReplaceAllString(strings.TrimSpace(desc), "")
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = descs[c]
	}
	return codes, out
}

// Destination returns the T## treatment code and its description.
func Destination(text string) (*string, *string) {
	m := patterns.Destination.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, nil
	}
	code := text[m[2]:m[3]]
	start := m[1]
	end := patterns.NextLabel(text, start)
	if stop := patterns.StopIndex(text, start); stop < end {
		end = stop
	}
	if blank := strings.Index(text[start:end], "\n\n"); blank >= 0 {
		end = start + blank
	}
	desc := utils.TruncateRunes(utils.CollapseSpaces(text[start:end]), patterns.MaxFragment, "")
	return utils.Ptr(code), utils.NilIfEmpty(desc)
}

// NormalizeDecimal turns a printed decimal into dot notation at extraction
// time: "1.234,5" -> "1234.5", "50,0" -> "50.0". Without a comma the value
// is kept as printed.
func NormalizeDecimal(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

// PadIndex left-pads a one digit item index: "1" -> "01".
func PadIndex(idx string) string {
	idx = strings.TrimSpace(idx)
	if len(idx) == 1 {
		return "0" + idx
	}
	return idx
}

func labelled(text string, l patterns.Label) *string {
	v, ok := patterns.LabelValue(text, l)
	if !ok {
		return nil
	}
	return utils.NilIfEmpty(utils.CollapseSpaces(v))
}
