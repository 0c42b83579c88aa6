// Package journal records controller operations into a database so that
// widget behavior can be inspected and replayed after the fact. A SQLite
// backend is the default; a ClickHouse backend is available for deployments
// that aggregate journals centrally.
package journal

// Recorder is a backend that can record and store operation data.
type Recorder interface {
	// CreateTable creates a new table shaped after the sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers a same-type entry into a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns a slice containing names of all tables.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()
}
