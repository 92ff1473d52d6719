package ocr

import (
	"context"
	"fmt"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			warnings = append(warnings, msg)
		}
		return nil, warnings, fmt.Errorf("pdftotext %s: %w", path, err)
	}
	return splitPages(string(out)), nil, nil
}
