package analysis

import "context"

// Repository port (interface untuk persistence)
//
// Lookups return (nil, nil) when nothing matches. Insert must fail with
// ErrConflict when id or value is already taken, atomically per id, so two
// concurrent creates of the same content can never both persist.
type Repository interface {
	FindByID(ctx context.Context, id ID) (*AnalyzedString, error)
	FindByValue(ctx context.Context, value string) (*AnalyzedString, error)
	Insert(ctx context.Context, s *AnalyzedString) error
	DeleteByID(ctx context.Context, id ID) error
	ListAll(ctx context.Context) ([]*AnalyzedString, error)
}

// SnapshotStore port (interface untuk penyimpanan snapshot export)
type SnapshotStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
