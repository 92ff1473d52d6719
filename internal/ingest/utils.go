package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/constants"
)

// AllowedExt checks if a file extension is in the default allowed set (pdf/txt).
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
