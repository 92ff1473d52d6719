package ocr

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// mupdfPages reads the text layer of every page through MuPDF.
// A page that fails to decode is kept as an empty page.
func mupdfPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make([]string, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		pages[i] = text
	}
	return pages, nil
}
