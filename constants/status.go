package constants

// DocumentStatus is the canonical status for rows in cadri_documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusDone    DocumentStatus = "DONE"     // at least one item extracted
	DocumentStatusNoItems DocumentStatus = "NO_ITEMS" // every strategy came back empty
	DocumentStatusFailed  DocumentStatus = "FAILED"   // text extraction failed
	DocumentStatusSkipped DocumentStatus = "SKIPPED"  // cache hit, never written
)

// Completed reports whether the status should mark a document as processed.
func (s DocumentStatus) Completed() bool {
	return s == DocumentStatusDone || s == DocumentStatusNoItems
}
