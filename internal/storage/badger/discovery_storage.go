package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/pkg/models"
)

// resultRecord wraps a DiscoveryResult with its append sequence. Records are
// append-only; nothing updates a stored record in place.
type resultRecord struct {
	Sequence uint64 `badgerhold:"key"`
	SeedURL  string `badgerhold:"index"`
	Result   models.DiscoveryResult
	StoredAt time.Time
}

// summaryRecord wraps a SessionSummary with its append sequence.
type summaryRecord struct {
	Sequence uint64 `badgerhold:"key"`
	Summary  models.SessionSummary
	StoredAt time.Time
}

// DiscoveryStorage implements the discovery sink and its read-side helpers
// on Badger.
type DiscoveryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDiscoveryStorage creates a new DiscoveryStorage instance
func NewDiscoveryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DiscoveryStorage {
	return &DiscoveryStorage{
		db:     db,
		logger: logger,
	}
}

// AppendResult stores a per-seed discovery record under the next sequence
// number.
func (s *DiscoveryStorage) AppendResult(result *models.DiscoveryResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("result ID is required")
	}

	record := &resultRecord{
		SeedURL:  result.URL,
		Result:   *result,
		StoredAt: time.Now(),
	}
	if err := s.db.Store().Insert(badgerhold.NextSequence(), record); err != nil {
		return fmt.Errorf("failed to append discovery result: %w", err)
	}

	s.logger.Debug().
		Str("id", result.ID).
		Str("seed", result.URL).
		Int64("sequence", int64(record.Sequence)).
		Msg("Discovery result appended")
	return nil
}

// AppendSummary stores the aggregate record for one session.
func (s *DiscoveryStorage) AppendSummary(summary *models.SessionSummary) error {
	if summary == nil || summary.ID == "" {
		return fmt.Errorf("summary ID is required")
	}

	record := &summaryRecord{
		Summary:  *summary,
		StoredAt: time.Now(),
	}
	if err := s.db.Store().Insert(badgerhold.NextSequence(), record); err != nil {
		return fmt.Errorf("failed to append session summary: %w", err)
	}

	s.logger.Debug().
		Str("id", summary.ID).
		Int64("sequence", int64(record.Sequence)).
		Msg("Session summary appended")
	return nil
}

// ResultsBySeed returns every stored result for a seed URL in append order.
func (s *DiscoveryStorage) ResultsBySeed(seedURL string) ([]*models.DiscoveryResult, error) {
	var records []resultRecord
	query := badgerhold.Where("SeedURL").Eq(seedURL).SortBy("Sequence")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query results for seed %s: %w", seedURL, err)
	}
	return resultsOf(records), nil
}

// ListResults returns stored results in append order, newest last. A limit
// of zero or less returns everything.
func (s *DiscoveryStorage) ListResults(limit int) ([]*models.DiscoveryResult, error) {
	var records []resultRecord
	query := badgerhold.Where("Sequence").Ge(uint64(0)).SortBy("Sequence")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list discovery results: %w", err)
	}
	return resultsOf(records), nil
}

// ListSummaries returns stored session summaries in append order. A limit of
// zero or less returns everything.
func (s *DiscoveryStorage) ListSummaries(limit int) ([]*models.SessionSummary, error) {
	var records []summaryRecord
	query := badgerhold.Where("Sequence").Ge(uint64(0)).SortBy("Sequence")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list session summaries: %w", err)
	}

	summaries := make([]*models.SessionSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, &records[i].Summary)
	}
	return summaries, nil
}

func resultsOf(records []resultRecord) []*models.DiscoveryResult {
	results := make([]*models.DiscoveryResult, 0, len(records))
	for i := range records {
		results = append(results, &records[i].Result)
	}
	return results
}
