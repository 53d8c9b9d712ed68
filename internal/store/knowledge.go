package store

import (
	"database/sql"
	"fmt"
	"strings"
)

const knowledgeColumns = `id, domain, topic, insight, confidence, sources, contributors, tags, version, supersedes, embedding, created_at`

// InsertKnowledge persists a new immutable knowledge entry and returns its id.
func (s *Store) InsertKnowledge(rec *KnowledgeRecord) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO knowledge_entries
		(domain, topic, insight, confidence, sources, contributors, tags, version, supersedes, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Domain, rec.Topic, rec.Insight, rec.Confidence, rec.Sources, rec.Contributors,
		rec.Tags, rec.Version, rec.Supersedes, rec.Embedding)
	if err != nil {
		return 0, fmt.Errorf("insert knowledge entry: %w", err)
	}
	return res.LastInsertId()
}

// GetKnowledge returns the knowledge entry with the given id.
func (s *Store) GetKnowledge(id int64) (*KnowledgeRecord, error) {
	row := s.db.QueryRow(`SELECT `+knowledgeColumns+` FROM knowledge_entries WHERE id = ?`, id)
	return scanKnowledge(row)
}

// FindSuperseder returns the entry whose supersedes points at id, if any.
func (s *Store) FindSuperseder(id int64) (*KnowledgeRecord, bool, error) {
	row := s.db.QueryRow(`SELECT `+knowledgeColumns+` FROM knowledge_entries
		WHERE supersedes = ? ORDER BY id LIMIT 1`, id)
	rec, err := scanKnowledge(row)
	if err == ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// CountKnowledgeInDomain returns the number of entries in a domain.
func (s *Store) CountKnowledgeInDomain(domain string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_entries WHERE domain = ?`, domain).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count knowledge: %w", err)
	}
	return n, nil
}

// ListRootInsights returns entries with no supersedes pointer for a domain,
// ordered by confidence then recency, both descending. Whether a newer
// version points at an entry is not checked here.
func (s *Store) ListRootInsights(domain string, limit int) ([]*KnowledgeRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT `+knowledgeColumns+` FROM knowledge_entries
		WHERE domain = ? AND supersedes IS NULL
		ORDER BY confidence DESC, created_at DESC, id DESC
		LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("list root insights: %w", err)
	}
	return collectKnowledge(rows)
}

// ListTopAcrossDomains returns the highest-confidence root entries across
// all domains.
func (s *Store) ListTopAcrossDomains(limit int) ([]*KnowledgeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+knowledgeColumns+` FROM knowledge_entries
		WHERE supersedes IS NULL
		ORDER BY confidence DESC, created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top entries: %w", err)
	}
	return collectKnowledge(rows)
}

// SearchKnowledge does a case-insensitive substring match over topic and
// insight. Naive full scan; no index.
func (s *Store) SearchKnowledge(query string) ([]*KnowledgeRecord, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(`SELECT `+knowledgeColumns+` FROM knowledge_entries
		WHERE lower(topic) LIKE ? OR lower(insight) LIKE ?
		ORDER BY id`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}
	return collectKnowledge(rows)
}

// KnowledgeStats returns per-domain entry counts and average confidence.
func (s *Store) KnowledgeStats() ([]DomainStat, error) {
	rows, err := s.db.Query(`SELECT domain, COUNT(*), AVG(confidence)
		FROM knowledge_entries GROUP BY domain ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("knowledge stats: %w", err)
	}
	defer rows.Close()

	var out []DomainStat
	for rows.Next() {
		var st DomainStat
		if err := rows.Scan(&st.Domain, &st.Entries, &st.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListKnowledgeDomains returns the distinct domains with at least one entry.
func (s *Store) ListKnowledgeDomains() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT domain FROM knowledge_entries ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListEmbeddedKnowledge returns all entries carrying an embedding blob.
func (s *Store) ListEmbeddedKnowledge() ([]*KnowledgeRecord, error) {
	rows, err := s.db.Query(`SELECT ` + knowledgeColumns + ` FROM knowledge_entries
		WHERE embedding IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list embedded knowledge: %w", err)
	}
	return collectKnowledge(rows)
}

// SetKnowledgeEmbedding attaches an embedding blob to an existing entry.
// The insight itself stays immutable; the embedding is derived data.
func (s *Store) SetKnowledgeEmbedding(id int64, blob []byte) error {
	res, err := s.db.Exec(`UPDATE knowledge_entries SET embedding = ? WHERE id = ?`, blob, id)
	if err != nil {
		return fmt.Errorf("set embedding: %w", err)
	}
	return requireRows(res)
}

func scanKnowledge(row rowScanner) (*KnowledgeRecord, error) {
	rec := &KnowledgeRecord{}
	err := row.Scan(&rec.ID, &rec.Domain, &rec.Topic, &rec.Insight, &rec.Confidence,
		&rec.Sources, &rec.Contributors, &rec.Tags, &rec.Version, &rec.Supersedes,
		&rec.Embedding, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan knowledge entry: %w", err)
	}
	return rec, nil
}

func collectKnowledge(rows *sql.Rows) ([]*KnowledgeRecord, error) {
	defer rows.Close()
	var out []*KnowledgeRecord
	for rows.Next() {
		rec, err := scanKnowledge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
