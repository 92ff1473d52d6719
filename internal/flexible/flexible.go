// Package flexible reads items from layouts the item anchor does not match.
// Three passes are tried in order by the caller; each one is independent.
package flexible

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/fields"
	"github.com/joseph-ayodele/cadri-extractor/internal/patterns"
	"github.com/joseph-ayodele/cadri-extractor/internal/segment"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

// minLineLen is the shortest line the section scan treats as content.
const minLineLen = 5

// Pass is one flexible reading of a document.
type Pass struct {
	Name string
	Run  func(doc *entity.SourceDocument) []entity.WasteItem
}

// Passes in the order they are tried.
var Passes = []Pass{
	{Name: "relaxed-anchor", Run: RelaxedAnchor},
	{Name: "section-scan", Run: SectionScan},
	{Name: "code-scan", Run: CodeScan},
}

// RelaxedAnchor reads "Resíduo: D 099 - ..." anchors without an item index.
// Blocks are cut as in the structured pass and fields read the same way.
func RelaxedAnchor(doc *entity.SourceDocument) []entity.WasteItem {
	text := doc.Text()
	matches := patterns.RelaxedAnchor.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	items := make([]entity.WasteItem, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := patterns.WindowEnd(text, start, patterns.BlockWindow)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		b := segment.ItemBlock{
			Start:       start,
			End:         end,
			Index:       strconv.Itoa(i + 1),
			Code:        strings.ReplaceAll(text[m[2]:m[3]], " ", ""),
			Description: patterns.CutAtLabel(text[m[4]:m[5]]),
			Text:        segment.StripBoilerplate(text[start:end]),
			Page:        doc.PageAt(start),
		}
		items = append(items, fields.Extract(doc.ID, b))
	}
	return items
}

type pending struct {
	code  string
	desc  string
	raw   string
	page  int
	class *string
	qty   *string
	unit  *string
}

// SectionScan reads a residues section line by line. A line holding a
// legacy code opens an item; following lines extend its description. Short
// or blank lines close it. Items without a description are discarded.
func SectionScan(doc *entity.SourceDocument) []entity.WasteItem {
	text := doc.Text()
	start, ok := patterns.SectionStart(text)
	if !ok {
		return nil
	}
	end := patterns.WindowEnd(text, start, patterns.SectionWindow)

	var (
		items []entity.WasteItem
		cur   *pending
	)
	flush := func() {
		if cur != nil && cur.code != "" && strings.TrimSpace(cur.desc) != "" {
			items = append(items, cur.item(doc.ID, len(items)+1))
		}
		cur = nil
	}

	offset := start
	for _, raw := range strings.Split(text[start:end], "\n") {
		lineStart := offset
		offset += len(raw) + 1

		line := strings.TrimSpace(raw)
		if len([]rune(line)) < minLineLen || patterns.IsPageMarker(line) {
			flush()
			continue
		}
		if loc := patterns.LooseLegacyCode.FindStringSubmatchIndex(line); loc != nil {
			flush()
			rest := line[loc[1]:]
			cur = &pending{
				code: patterns.NormalizeLegacyCode(line[loc[2]:loc[3]]),
				desc: strings.TrimSpace(rest),
				raw:  line,
				page: doc.PageAt(lineStart),
			}
			cur.additional(rest)
			continue
		}
		if cur == nil {
			continue
		}
		cur.desc = strings.TrimSpace(cur.desc + " " + line)
		cur.raw += " " + line
		cur.additional(line)
	}
	flush()
	return items
}

// CodeScan finds every distinct legacy code in the text, in order of first
// appearance, and reads an item from the code's line plus the next one.
func CodeScan(doc *entity.SourceDocument) []entity.WasteItem {
	text := doc.Text()
	seen := map[string]bool{}
	var items []entity.WasteItem

	for _, m := range patterns.LooseLegacyCode.FindAllStringSubmatchIndex(text, -1) {
		code := patterns.NormalizeLegacyCode(text[m[2]:m[3]])
		if seen[code] {
			continue
		}
		seen[code] = true

		ctxEnd := lineEnd(text, m[3])
		if ctxEnd < len(text) {
			ctxEnd = lineEnd(text, ctxEnd+1)
		}
		context := text[m[3]:ctxEnd]

		p := &pending{
			code: code,
			desc: utils.TruncateRunes(utils.CollapseSpaces(context), patterns.MaxFragment, ""),
			raw:  strings.ReplaceAll(text[m[2]:ctxEnd], "\n", " "),
			page: doc.PageAt(m[2]),
		}
		p.additional(context)
		items = append(items, p.item(doc.ID, len(items)+1))
	}
	return items
}

func lineEnd(text string, from int) int {
	if i := strings.IndexByte(text[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(text)
}

// additional picks up a generic quantity and class the first time each appears.
func (p *pending) additional(s string) {
	if p.qty == nil {
		if m := patterns.GenericQty.FindStringSubmatch(s); m != nil {
			p.qty = utils.Ptr(fields.NormalizeDecimal(m[1]))
			p.unit = utils.Ptr(strings.ToLower(m[2]))
		}
	}
	if p.class == nil {
		if m := patterns.GenericClass.FindStringSubmatch(s); m != nil {
			p.class = utils.Ptr(strings.ReplaceAll(m[1], " ", ""))
		}
	}
}

func (p *pending) item(documentID string, index int) entity.WasteItem {
	it := entity.WasteItem{
		DocumentID:  documentID,
		ItemIndex:   fields.PadIndex(strconv.Itoa(index)),
		ResidueCode: utils.Ptr(p.code),
		Description: utils.NilIfEmpty(p.desc),
		RawFragment: utils.NilIfEmpty(p.raw),
		Class:       p.class,
		Quantity:    p.qty,
		Unit:        p.unit,
	}
	if p.page > 0 {
		it.SourcePage = utils.Ptr(p.page)
	}
	return it
}
