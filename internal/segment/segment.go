// Package segment splits certificate text into one block per waste item.
package segment

import (
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/patterns"
)

// ItemBlock is the span of text describing one item. Ephemeral.
type ItemBlock struct {
	Start       int    // offset of the anchor in the document text
	End         int    // exclusive
	Index       string // item index as printed
	Code        string // code token as printed, unvalidated
	Description string // anchor description, cut at the first field label
	Text        string // block text with page-break boilerplate removed
	Page        int    // 1-based page of the anchor, 0 if unknown
}

// Segment finds every item anchor and cuts the text into blocks. A block runs
// to the next anchor or, for the last one, at most patterns.BlockWindow characters.
// No anchors yields nil.
func Segment(doc *entity.SourceDocument) []ItemBlock {
	text := doc.Text()
	matches := patterns.ItemAnchor.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]ItemBlock, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := patterns.WindowEnd(text, start, patterns.BlockWindow)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, ItemBlock{
			Start:       start,
			End:         end,
			Index:       text[m[2]:m[3]],
			Code:        text[m[4]:m[5]],
			Description: patterns.CutAtLabel(text[m[6]:m[7]]),
			Text:        StripBoilerplate(text[start:end]),
			Page:        doc.PageAt(start),
		})
	}
	return blocks
}

// StripBoilerplate removes page-break letterhead through footer, and page
// markers. The toggle turns on at the letterhead line and off after the footer.
func StripBoilerplate(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	inHeader := false
	for _, line := range lines {
		switch {
		case patterns.IsLetterhead(line):
			inHeader = true
			continue
		case patterns.IsFooter(line):
			inHeader = false
			continue
		case patterns.IsPageMarker(line):
			continue
		}
		if inHeader {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
