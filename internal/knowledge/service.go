// Package knowledge implements the versioned knowledge store with
// supersession chains.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dialectiq/dialectiq/internal/store"
)

// ErrDataIntegrity is returned when lineage traversal detects a cycle.
var ErrDataIntegrity = errors.New("knowledge lineage cycle detected")

// Entry is a decoded knowledge entry. Entries are immutable once created;
// an update inserts a new entry with version = previous.version + 1 and
// supersedes pointing at the previous entry.
type Entry struct {
	ID           int64     `json:"id"`
	Domain       string    `json:"domain"`
	Topic        string    `json:"topic"`
	Insight      string    `json:"insight"`
	Confidence   float64   `json:"confidence"`
	Sources      []int64   `json:"sources"`
	Contributors []int64   `json:"contributors"`
	Tags         []string  `json:"tags"`
	Version      int       `json:"version"`
	Supersedes   *int64    `json:"supersedes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service provides knowledge-store operations over the shared store.
type Service struct {
	store *store.Store
}

// NewService creates a knowledge Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// CreateEntry inserts a new lineage root (version 1, no supersedes).
func (s *Service) CreateEntry(domain, topic, insight string, confidence float64, sources, contributors []int64, tags []string) (int64, error) {
	rec := &store.KnowledgeRecord{
		Domain:       domain,
		Topic:        topic,
		Insight:      insight,
		Confidence:   confidence,
		Sources:      marshalIDs(sources),
		Contributors: marshalIDs(contributors),
		Tags:         marshalTags(tags),
		Version:      1,
	}
	return s.store.InsertKnowledge(rec)
}

// Supersede inserts a new version of an existing entry. Domain, topic, and
// tags are copied from the original; version increments by one.
func (s *Service) Supersede(originalID int64, newInsight string, newConfidence float64, sources, contributors []int64) (int64, error) {
	original, err := s.store.GetKnowledge(originalID)
	if err != nil {
		return 0, fmt.Errorf("supersede %d: %w", originalID, err)
	}
	rec := &store.KnowledgeRecord{
		Domain:       original.Domain,
		Topic:        original.Topic,
		Insight:      newInsight,
		Confidence:   newConfidence,
		Sources:      marshalIDs(sources),
		Contributors: marshalIDs(contributors),
		Tags:         original.Tags,
		Version:      original.Version + 1,
		Supersedes:   &original.ID,
	}
	return s.store.InsertKnowledge(rec)
}

// Get returns a single decoded entry.
func (s *Service) Get(id int64) (*Entry, error) {
	rec, err := s.store.GetKnowledge(id)
	if err != nil {
		return nil, err
	}
	return decode(rec), nil
}

// GetLineage returns the full ordered lineage, root first, that the given
// entry belongs to. Traversal is bounded by the entry count of the domain:
// exceeding the bound means the supersession chain is cyclic, which is a
// fatal data-integrity error rather than an infinite loop.
func (s *Service) GetLineage(anyID int64) ([]*Entry, error) {
	current, err := s.store.GetKnowledge(anyID)
	if err != nil {
		return nil, err
	}
	bound, err := s.store.CountKnowledgeInDomain(current.Domain)
	if err != nil {
		return nil, err
	}

	// Walk backward to the root.
	steps := 0
	for current.Supersedes != nil {
		steps++
		if steps > bound {
			return nil, fmt.Errorf("lineage of entry %d: %w", anyID, ErrDataIntegrity)
		}
		prev, err := s.store.GetKnowledge(*current.Supersedes)
		if err != nil {
			return nil, fmt.Errorf("lineage of entry %d: %w", anyID, err)
		}
		current = prev
	}

	// Walk forward to the head.
	lineage := []*Entry{decode(current)}
	steps = 0
	for {
		next, ok, err := s.store.FindSuperseder(current.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return lineage, nil
		}
		steps++
		if steps > bound {
			return nil, fmt.Errorf("lineage of entry %d: %w", anyID, ErrDataIntegrity)
		}
		lineage = append(lineage, decode(next))
		current = next
	}
}

// Head returns the most recent, not-yet-superseded entry of the lineage
// containing anyID.
func (s *Service) Head(anyID int64) (*Entry, error) {
	lineage, err := s.GetLineage(anyID)
	if err != nil {
		return nil, err
	}
	return lineage[len(lineage)-1], nil
}

// TopInsights returns entries with no supersedes pointer for a domain,
// ordered by confidence then recency descending. Only lineage roots that
// were never updated match this filter; callers wanting the newest version
// of an updated lineage should use Head.
func (s *Service) TopInsights(domain string, limit int) ([]*Entry, error) {
	recs, err := s.store.ListRootInsights(domain, limit)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs), nil
}

// TopAcrossDomains returns the highest-confidence roots over all domains.
func (s *Service) TopAcrossDomains(limit int) ([]*Entry, error) {
	recs, err := s.store.ListTopAcrossDomains(limit)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs), nil
}

// SearchByText does a case-insensitive substring match over topic and insight.
func (s *Service) SearchByText(query string) ([]*Entry, error) {
	recs, err := s.store.SearchKnowledge(query)
	if err != nil {
		return nil, err
	}
	return decodeAll(recs), nil
}

// StatsByDomain returns per-domain entry counts and average confidence.
func (s *Service) StatsByDomain() ([]store.DomainStat, error) {
	return s.store.KnowledgeStats()
}

// Domains returns all domains with at least one entry.
func (s *Service) Domains() ([]string, error) {
	return s.store.ListKnowledgeDomains()
}

// AttachEmbedding stores a derived embedding vector on an entry.
func (s *Service) AttachEmbedding(id int64, vector []float32) error {
	return s.store.SetKnowledgeEmbedding(id, encodeFloat32s(vector))
}

// Match pairs an entry with its similarity to a query vector.
type Match struct {
	Entry      *Entry  `json:"entry"`
	Similarity float32 `json:"similarity"`
}

// SearchSimilar ranks all entries carrying an embedding by cosine
// similarity to the query vector, highest first. Entries without an
// embedding never match.
func (s *Service) SearchSimilar(vector []float32, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 10
	}
	recs, err := s.store.ListEmbeddedKnowledge()
	if err != nil {
		return nil, err
	}

	var out []Match
	for _, rec := range recs {
		stored := DecodeEmbedding(rec.Embedding)
		if len(stored) == 0 {
			continue
		}
		out = append(out, Match{
			Entry:      decode(rec),
			Similarity: CosineSimilarity(vector, stored),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func decode(rec *store.KnowledgeRecord) *Entry {
	e := &Entry{
		ID:         rec.ID,
		Domain:     rec.Domain,
		Topic:      rec.Topic,
		Insight:    rec.Insight,
		Confidence: rec.Confidence,
		Version:    rec.Version,
		Supersedes: rec.Supersedes,
		CreatedAt:  rec.CreatedAt,
	}
	_ = json.Unmarshal([]byte(rec.Sources), &e.Sources)
	_ = json.Unmarshal([]byte(rec.Contributors), &e.Contributors)
	_ = json.Unmarshal([]byte(rec.Tags), &e.Tags)
	return e
}

func decodeAll(recs []*store.KnowledgeRecord) []*Entry {
	out := make([]*Entry, len(recs))
	for i, rec := range recs {
		out[i] = decode(rec)
	}
	return out
}

func marshalIDs(ids []int64) string {
	if ids == nil {
		ids = []int64{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}
