package analysis

import "github.com/cockroachdb/errors"

// Error kinds returned by the analysis core and its stores. Callers match them
// with errors.Is; the transport layer owns the mapping to status codes.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingInput  = errors.New("missing input")
	ErrAlreadyExists = errors.New("string already exists")
	ErrNotFound      = errors.New("string does not exist in the system")
	ErrMissingQuery  = errors.New("missing query parameter")
	ErrUnparseable   = errors.New("unable to parse natural language query")

	// ErrConflict is returned by a Repository when a uniqueness constraint on
	// id or value rejects an insert.
	ErrConflict = errors.New("record conflict")

	// ErrExportDisabled is returned when no SnapshotStore is configured.
	ErrExportDisabled = errors.New("snapshot export is not configured")
)
