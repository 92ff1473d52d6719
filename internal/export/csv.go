package export

import (
	"bytes"
	"encoding/csv"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

// utf8BOM lets spreadsheet tools detect the encoding of accented text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders rows as ';'-separated UTF-8 with a BOM.
func WriteCSV(rows []entity.ItemRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(Header()); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
