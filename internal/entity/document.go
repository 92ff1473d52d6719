package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PageMarkerFormat is written between pages when building the full document text.
const PageMarkerFormat = "\n--- PÁGINA %d ---\n"

var rePageMarker = regexp.MustCompile(`--- PÁGINA (\d+) ---`)

// SourceDocument is the text of one certificate, one entry per page.
// It is built once per input file and never mutated.
type SourceDocument struct {
	ID    string
	Pages []string

	text    string
	offsets []pageOffset
}

type pageOffset struct {
	start int
	page  int
}

// NewSourceDocument joins the pages with page markers. Blank pages are
// skipped but keep their number, so markers always carry the printed page.
func NewSourceDocument(id string, pages []string) *SourceDocument {
	d := &SourceDocument{ID: id, Pages: pages}
	var b strings.Builder
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		fmt.Fprintf(&b, PageMarkerFormat, i+1)
		d.offsets = append(d.offsets, pageOffset{start: b.Len(), page: i + 1})
		b.WriteString(p)
	}
	d.text = b.String()
	return d
}

// NewSourceDocumentFromText wraps text that already carries page markers
// (or none at all), such as text posted over the API.
func NewSourceDocumentFromText(id, text string) *SourceDocument {
	d := &SourceDocument{ID: id, Pages: []string{text}, text: text}
	for _, m := range rePageMarker.FindAllStringSubmatchIndex(text, -1) {
		n, _ := strconv.Atoi(text[m[2]:m[3]])
		d.offsets = append(d.offsets, pageOffset{start: m[1], page: n})
	}
	return d
}

// Text returns the concatenated text with page markers.
func (d *SourceDocument) Text() string { return d.text }

// Empty reports whether no page carried any text.
func (d *SourceDocument) Empty() bool { return strings.TrimSpace(d.text) == "" }

// PageAt maps an offset in Text() to a 1-based page number, 0 if unknown.
func (d *SourceDocument) PageAt(offset int) int {
	i := sort.Search(len(d.offsets), func(i int) bool { return d.offsets[i].start > offset })
	if i == 0 {
		if len(d.offsets) > 0 {
			return d.offsets[0].page
		}
		return 0
	}
	return d.offsets[i-1].page
}
