package trace

import (
	"context"
	"time"
)

// Exporter is the immortal log's ghost writer: a pluggable notification sink
// that mirrors recent write activity without being part of the durability
// path. Implementations must be safe for concurrent use. The only real sink
// is the file-based FileExporter, which is compiled only with the 'tracing'
// build tag; in other builds NewFileExporter returns a NoopExporter that
// writes nothing. Multi-client fan-out is out of scope.
type Exporter interface {
	// Export writes a trace record to the configured destination.
	// Returns error if export fails.
	Export(ctx context.Context, record *TraceRecord) error

	// Close flushes any buffered records and releases resources.
	// Should be called during graceful shutdown.
	Close() error
}

// TraceRecord represents a sanitized operation trace ready for export.
// This structure contains NO sensitive data (no node content, no embeddings).
type TraceRecord struct {
	// Timestamp is the operation start time
	Timestamp time.Time `json:"timestamp"`

	// OperationID uniquely identifies this operation (for correlation)
	OperationID string `json:"operationId"`

	// Operation is the operation type: "add", "link", "get", "delete", "correct",
	// "query", "traverse", "search", "consolidate", "compact"
	Operation string `json:"operation"`

	// DurationMs is the total operation duration in milliseconds
	DurationMs int64 `json:"durationMs"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// Spans contains per-stage timing and status
	Spans []SpanRecord `json:"spans"`

	// ErrorType classifies the error (if Status == "error").
	// Values: not_found, invalid_argument, invariant_violation, corrupt_format,
	// integrity_failed, locked, cancelled, dimension_mismatch, io, unknown
	ErrorType string `json:"errorType,omitempty"`

	// IDs contains operation-specific identifiers (no content)
	IDs map[string]interface{} `json:"ids,omitempty"`
}

// SpanRecord represents a single stage within an operation.
type SpanRecord struct {
	// Name is the stage name (chunk, embed, extract, write-graph, write-vector, search-vector, search-expand)
	Name string `json:"name"`

	// DurationMs is the stage duration in milliseconds
	DurationMs int64 `json:"durationMs"`

	// OK indicates success (true) or failure (false)
	OK bool `json:"ok"`

	// ErrorType classifies the error (if OK == false)
	ErrorType string `json:"errorType,omitempty"`

	// Counters provides stage-specific metrics (e.g., chunkCount, nodeUpserts)
	Counters map[string]int64 `json:"counters,omitempty"`
}

// FileExporterOption configures a FileExporter.
// This type is available in both tracing and non-tracing builds; the WithMaxSize and
// WithMaxRotatedFiles constructors exist only in tracing builds.
type FileExporterOption func(interface{})
