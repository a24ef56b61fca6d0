package repository

// scanner is satisfied by both *sql.Row and *sql.Rows so the scan helpers
// work for point lookups and list queries alike.
type scanner interface {
	Scan(dest ...any) error
}
