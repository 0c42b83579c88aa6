package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"

	"github.com/quantkit/quantkit/controller"
)

// ClickHouseWriter records operation journals into ClickHouse over the
// native protocol. Unlike the SQLite writer, it carries a fixed schema for
// operation records and inserts them with typed batches, so deployments that
// aggregate journals from many processes get an efficient column layout.
type ClickHouseWriter struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	tables map[string]struct{}
	batch  map[string][]controller.OperationRecord
}

// ClickHouseOptions configures the connection.
type ClickHouseOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// BatchSize is the number of buffered records that triggers a flush.
	// Zero selects a default.
	BatchSize int
}

// NewClickHouseWriter connects to ClickHouse and verifies the connection.
// It panics if the server is unreachable.
func NewClickHouseWriter(opts ClickHouseOptions) *ClickHouseWriter {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = 4096
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	w := &ClickHouseWriter{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]struct{}),
		batch:     make(map[string][]controller.OperationRecord),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// CreateTable creates an operations table. The sample entry must be a
// controller.OperationRecord; the schema is fixed.
func (w *ClickHouseWriter) CreateTable(tableName string, sampleEntry any) {
	if _, ok := sampleEntry.(controller.OperationRecord); !ok {
		panic(fmt.Sprintf(
			"clickhouse journal only stores OperationRecord, got %T",
			sampleEntry))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ID String,
			Controller String,
			Op String,
			FromQty Int64,
			ToQty Int64,
			Generation UInt64,
			Outcome String,
			Error String
		) ENGINE = MergeTree()
		ORDER BY (Controller, ID)
	`, tableName)

	err := w.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	w.tables[tableName] = struct{}{}
}

// InsertData buffers one operation record.
func (w *ClickHouseWriter) InsertData(tableName string, entry any) {
	rec, ok := entry.(controller.OperationRecord)
	if !ok {
		panic(fmt.Sprintf(
			"clickhouse journal only stores OperationRecord, got %T", entry))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.tables[tableName]; !exists {
		panic(fmt.Sprintf("journal table %s does not exist", tableName))
	}

	w.batch[tableName] = append(w.batch[tableName], rec)

	if w.pendingLocked() >= w.batchSize {
		w.flushLocked()
	}
}

// ListTables returns the names of all created tables.
func (w *ClickHouseWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for t := range w.tables {
		tables = append(tables, t)
	}

	return tables
}

// Flush writes all buffered records.
func (w *ClickHouseWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flushLocked()
}

func (w *ClickHouseWriter) pendingLocked() int {
	total := 0
	for _, entries := range w.batch {
		total += len(entries)
	}

	return total
}

func (w *ClickHouseWriter) flushLocked() {
	ctx := context.Background()

	for tableName, entries := range w.batch {
		if len(entries) == 0 {
			continue
		}

		batch, err := w.conn.PrepareBatch(ctx,
			"INSERT INTO "+tableName)
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch: %w", err))
		}

		for _, rec := range entries {
			err = batch.Append(
				rec.ID,
				rec.Controller,
				rec.Op,
				int64(rec.FromQty),
				int64(rec.ToQty),
				rec.Generation,
				rec.Outcome,
				rec.Error,
			)
			if err != nil {
				panic(fmt.Errorf("failed to append record: %w", err))
			}
		}

		if err := batch.Send(); err != nil {
			panic(fmt.Errorf("failed to send batch: %w", err))
		}

		w.batch[tableName] = nil
	}
}

// Close flushes and closes the connection.
func (w *ClickHouseWriter) Close() error {
	w.Flush()
	return w.conn.Close()
}

var _ Recorder = (*ClickHouseWriter)(nil)
