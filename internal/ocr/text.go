package ocr

import (
	"os"

	"github.com/joseph-ayodele/cadri-extractor/constants"
)

// extractPlain reads a pre-extracted text file, form feeds separating pages.
func (e *Extractor) extractPlain(path string) (Result, error) {
	res := Result{SourceType: constants.TXT, Method: MethodPlainText}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	res.Pages = splitPages(string(b))
	return res, nil
}
