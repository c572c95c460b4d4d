package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/string-analyzer/internal/application"
	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

// Service implements use-cases untuk analyzed strings.
// It holds no state of its own and is safe for concurrent use when Repo is.
type Service struct {
	Repo      domain.Repository
	Snapshots domain.SnapshotStore // optional; nil disables Export
	Clock     application.Clock
	Recorder  Recorder // optional
	Log       *zap.Logger
}

// Recorder receives domain events for metrics.
type Recorder interface {
	StringCreated()
	DuplicateRejected()
	StringDeleted()
}

// ListResult is returned by List.
type ListResult struct {
	Data           []*domain.AnalyzedString `json:"data"`
	Count          int                      `json:"count"`
	FiltersApplied domain.FilterSet         `json:"filters_applied"`
}

// InterpretedQuery echoes a natural-language query and the filters derived from it.
type InterpretedQuery struct {
	Original      string           `json:"original"`
	ParsedFilters domain.FilterSet `json:"parsed_filters"`
}

// NaturalLanguageResult is returned by FilterByNaturalLanguage.
type NaturalLanguageResult struct {
	Data             []*domain.AnalyzedString `json:"data"`
	Count            int                      `json:"count"`
	Message          string                   `json:"message,omitempty"`
	InterpretedQuery InterpretedQuery         `json:"interpreted_query"`
}

// Deleted identifies a removed record.
type Deleted struct {
	ID    domain.ID `json:"id"`
	Value string    `json:"value"`
}

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Count      int       `json:"count"`
	ExportedAt time.Time `json:"exported_at"`
}

// NoMatchMessage accompanies an empty natural-language result.
const NoMatchMessage = "No strings match the provided natural language query"

//
// ==== USE CASES ====
//

// Create analyzes raw and stores it under its content hash. Values that differ
// only in surrounding white space share a hash and are rejected as duplicates.
func (s *Service) Create(ctx context.Context, raw string) (*domain.AnalyzedString, error) {
	if raw == "" {
		return nil, errors.Wrap(domain.ErrMissingInput, `missing "value" field`)
	}

	props, err := domain.Analyze(raw)
	if err != nil {
		return nil, err
	}
	id := domain.ID(props.SHA256Hash)

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "lookup by id")
	}
	if existing != nil {
		s.duplicate()
		return nil, errors.Wrapf(domain.ErrAlreadyExists, "id %s", id)
	}

	rec := &domain.AnalyzedString{
		ID:         id,
		Value:      raw,
		Properties: props,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.duplicate()
			return nil, errors.Wrapf(domain.ErrAlreadyExists, "id %s", id)
		}
		return nil, errors.Wrap(err, "insert")
	}

	if s.Recorder != nil {
		s.Recorder.StringCreated()
	}
	s.logger().Info("string created",
		zap.String("id", string(id)),
		zap.Int("length", props.Length),
	)
	return rec, nil
}

// Get fetch 1 record by its exact stored value
func (s *Service) Get(ctx context.Context, value string) (*domain.AnalyzedString, error) {
	if value == "" {
		return nil, errors.Wrap(domain.ErrMissingInput, "missing string value")
	}
	rec, err := s.Repo.FindByValue(ctx, value)
	if err != nil {
		return nil, errors.Wrap(err, "lookup by value")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// List returns every stored record matching f, in store order.
func (s *Service) List(ctx context.Context, f domain.FilterSet) (*ListResult, error) {
	all, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list strings")
	}
	data := domain.Filter(all, f)
	return &ListResult{Data: data, Count: len(data), FiltersApplied: f}, nil
}

// FilterByNaturalLanguage parses query into a FilterSet and applies it. An empty
// result is not an error; it carries NoMatchMessage instead.
func (s *Service) FilterByNaturalLanguage(ctx context.Context, query string) (*NaturalLanguageResult, error) {
	parsed, err := domain.ParseNaturalLanguage(query)
	if err != nil {
		return nil, err
	}

	list, err := s.List(ctx, parsed)
	if err != nil {
		return nil, err
	}

	res := &NaturalLanguageResult{
		Data:  list.Data,
		Count: list.Count,
		InterpretedQuery: InterpretedQuery{
			Original:      query,
			ParsedFilters: parsed,
		},
	}
	if res.Count == 0 {
		res.Message = NoMatchMessage
	}
	return res, nil
}

// Delete removes the record stored under value permanently.
func (s *Service) Delete(ctx context.Context, value string) (*Deleted, error) {
	if value == "" {
		return nil, errors.Wrap(domain.ErrMissingInput, "missing string value to delete")
	}
	rec, err := s.Repo.FindByValue(ctx, value)
	if err != nil {
		return nil, errors.Wrap(err, "lookup by value")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.Repo.DeleteByID(ctx, rec.ID); err != nil {
		return nil, err
	}

	if s.Recorder != nil {
		s.Recorder.StringDeleted()
	}
	s.logger().Info("string deleted", zap.String("id", string(rec.ID)))
	return &Deleted{ID: rec.ID, Value: rec.Value}, nil
}

// Export uploads a JSON snapshot of every record to the snapshot store.
func (s *Service) Export(ctx context.Context) (*ExportResult, error) {
	if s.Snapshots == nil {
		return nil, domain.ErrExportDisabled
	}
	all, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list strings")
	}

	now := s.now()
	body, err := json.Marshal(struct {
		ExportedAt time.Time                `json:"exported_at"`
		Count      int                      `json:"count"`
		Data       []*domain.AnalyzedString `json:"data"`
	}{now, len(all), all})
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", now.Format("2006-01-02"), uuid.New().String())
	url, err := s.Snapshots.Put(ctx, key, "application/json", body)
	if err != nil {
		return nil, errors.Wrap(err, "upload snapshot")
	}

	s.logger().Info("snapshot exported", zap.String("key", key), zap.Int("count", len(all)))
	return &ExportResult{Key: key, URL: url, Count: len(all), ExportedAt: now}, nil
}

// helper
func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) duplicate() {
	if s.Recorder != nil {
		s.Recorder.DuplicateRejected()
	}
}
