// Package screen matches names and documents against the loaded sanctions
// list. Single-name screening wraps the matcher directly; document screening
// extracts entities first and screens each one.
package screen

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/extract"
	"github.com/sells-group/sanctions-cli/internal/match"
	"github.com/sells-group/sanctions-cli/internal/sdn"
	"github.com/sells-group/sanctions-cli/internal/store"
)

// Screening parameter bounds. Out-of-range values are clamped, not rejected.
const (
	MinThreshold = 0
	MaxThreshold = 10
	MinLimit     = 1
	MaxLimit     = 100

	DefaultThreshold = 4
	DefaultLimit     = 20
	// DefaultLimitPerEntity caps hits per extracted entity in document
	// screening, where one document can carry many entities.
	DefaultLimitPerEntity = 5
)

var (
	// ErrEmptyQuery is returned when the query name is blank.
	ErrEmptyQuery = eris.New("screen: empty query name")
	// ErrEmptyDocument is returned when the document text is blank.
	ErrEmptyDocument = eris.New("screen: empty document text")
	// ErrNoExtractor is returned when document screening is requested but no
	// entity extractor is configured.
	ErrNoExtractor = eris.New("screen: no entity extractor configured")
)

// Response is the result of screening one name.
type Response struct {
	Query     string      `json:"query"`
	Threshold int         `json:"threshold"`
	TotalHits int         `json:"total_hits"`
	Results   []match.Hit `json:"results"`
}

// EntityResult is the screening outcome for one extracted entity.
type EntityResult struct {
	Entity     string      `json:"entity"`
	EntityType string      `json:"entity_type"`
	IsMatch    bool        `json:"is_match"`
	Hits       []match.Hit `json:"hits"`
}

// DocumentResponse is the result of screening a free-form document.
type DocumentResponse struct {
	EntitiesExtracted      []extract.Entity `json:"entities_extracted"`
	ScreeningResults       []EntityResult   `json:"screening_results"`
	DocumentClear          bool             `json:"document_clear"`
	TotalEntitiesExtracted int              `json:"total_entities_extracted"`
	TotalMatches           int              `json:"total_matches"`
}

// Service screens names and documents against an in-memory snapshot of the
// stored list. Reload swaps the snapshot after a sync; all methods are safe
// for concurrent use.
type Service struct {
	store     store.Store
	extractor extract.Extractor

	mu      sync.RWMutex
	matcher *match.Matcher
}

// NewService loads the current list from the store and indexes it. The
// extractor may be nil, which disables document screening.
func NewService(ctx context.Context, st store.Store, ex extract.Extractor) (*Service, error) {
	s := &Service{store: st, extractor: ex}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the matcher from the store's current contents.
func (s *Service) Reload(ctx context.Context) error {
	parties, err := s.store.ListParties(ctx)
	if err != nil {
		return eris.Wrap(err, "screen: load parties")
	}
	m := match.New(parties)

	s.mu.Lock()
	s.matcher = m
	s.mu.Unlock()

	zap.L().Info("screening corpus indexed",
		zap.Int("entries", m.Entries()),
		zap.Int("names", m.Names()),
	)
	return nil
}

func (s *Service) snapshot() *match.Matcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher
}

// Entries reports how many list entries the current snapshot indexes.
func (s *Service) Entries() int { return s.snapshot().Entries() }

// Names reports how many corpus names the current snapshot indexes.
func (s *Service) Names() int { return s.snapshot().Names() }

// ScreenName screens one name. Callers supply explicit threshold and limit
// values (defaults are applied at the API and CLI edges); both are clamped
// to their valid ranges.
func (s *Service) ScreenName(ctx context.Context, name string, threshold, limit int) (*Response, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyQuery
	}
	threshold = ClampThreshold(threshold)
	limit = ClampLimit(limit)

	hits := normalizeHits(s.snapshot().Screen(name, threshold, limit))
	return &Response{
		Query:     name,
		Threshold: threshold,
		TotalHits: len(hits),
		Results:   hits,
	}, nil
}

// ScreenDocument extracts entities from text and screens each one. The
// document is clear when no entity produced a hit.
func (s *Service) ScreenDocument(ctx context.Context, text string, threshold, limitPerEntity int) (*DocumentResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}
	threshold = ClampThreshold(threshold)
	limitPerEntity = ClampLimit(limitPerEntity)

	entities, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, eris.Wrap(err, "screen: extract entities")
	}
	if entities == nil {
		entities = []extract.Entity{}
	}

	m := s.snapshot()
	results := make([]EntityResult, 0, len(entities))
	matches := 0
	for _, ent := range entities {
		hits := normalizeHits(m.Screen(ent.Name, threshold, limitPerEntity))
		if len(hits) > 0 {
			matches++
		}
		results = append(results, EntityResult{
			Entity:     ent.Name,
			EntityType: ent.EntityType,
			IsMatch:    len(hits) > 0,
			Hits:       hits,
		})
	}

	return &DocumentResponse{
		EntitiesExtracted:      entities,
		ScreeningResults:       results,
		DocumentClear:          matches == 0,
		TotalEntitiesExtracted: len(entities),
		TotalMatches:           matches,
	}, nil
}

// GetEntry returns one list entry by sdn_entry_id, or nil when absent.
func (s *Service) GetEntry(ctx context.Context, entryID int) (*sdn.Party, error) {
	return s.store.GetParty(ctx, entryID)
}

// ClampThreshold bounds threshold to [0, 10].
func ClampThreshold(t int) int {
	if t < MinThreshold {
		return MinThreshold
	}
	if t > MaxThreshold {
		return MaxThreshold
	}
	return t
}

// ClampLimit bounds limit to [1, 100].
func ClampLimit(l int) int {
	if l < MinLimit {
		return MinLimit
	}
	if l > MaxLimit {
		return MaxLimit
	}
	return l
}

// normalizeHits replaces nil slices so hits marshal as [] rather than null,
// matching what screening consumers expect.
func normalizeHits(hits []match.Hit) []match.Hit {
	if hits == nil {
		return []match.Hit{}
	}
	for i := range hits {
		if hits[i].Programs == nil {
			hits[i].Programs = []string{}
		}
		if hits[i].LegalAuthorities == nil {
			hits[i].LegalAuthorities = []string{}
		}
		if hits[i].DatesOfBirth == nil {
			hits[i].DatesOfBirth = []string{}
		}
		if hits[i].Nationalities == nil {
			hits[i].Nationalities = []string{}
		}
	}
	return hits
}
