// Package store provides SQLite persistence for agents, dialogues,
// knowledge entries, metrics, and feedback.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// Store owns the SQLite database shared by all services.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Best-effort migration for existing dbs (no-op if column exists).
	_, _ = db.Exec(`ALTER TABLE knowledge_entries ADD COLUMN embedding BLOB`)
	_, _ = db.Exec(`ALTER TABLE dialogues ADD COLUMN trace_id TEXT DEFAULT ''`)

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

// CreateAgent inserts a new agent record with status active.
func (s *Store) CreateAgent(name, domain, role, instruction string) (*AgentRecord, error) {
	res, err := s.db.Exec(`INSERT INTO agents (name, domain, role, instruction, status)
		VALUES (?, ?, ?, ?, ?)`, name, domain, role, instruction, AgentActive)
	if err != nil {
		return nil, fmt.Errorf("insert agent: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetAgent(id)
}

// GetAgent returns the agent with the given id.
func (s *Store) GetAgent(id int64) (*AgentRecord, error) {
	row := s.db.QueryRow(`SELECT id, name, domain, role, instruction, status, trained_at, created_at, updated_at
		FROM agents WHERE id = ?`, id)
	return scanAgent(row)
}

// ListAgents returns agents, optionally filtered by domain.
func (s *Store) ListAgents(domain string) ([]*AgentRecord, error) {
	query := `SELECT id, name, domain, role, instruction, status, trained_at, created_at, updated_at
		FROM agents`
	args := []any{}
	if domain != "" {
		query += ` WHERE domain = ?`
		args = append(args, domain)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []*AgentRecord
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAgentInstruction replaces the system instruction and stamps trained_at.
func (s *Store) UpdateAgentInstruction(id int64, instruction string) error {
	res, err := s.db.Exec(`UPDATE agents
		SET instruction = ?, trained_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, instruction, id)
	if err != nil {
		return fmt.Errorf("update agent instruction: %w", err)
	}
	return requireRows(res)
}

// UpdateAgentStatus transitions the agent lifecycle status.
func (s *Store) UpdateAgentStatus(id int64, status string) error {
	res, err := s.db.Exec(`UPDATE agents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	return requireRows(res)
}

// ---------------------------------------------------------------------------
// Agent pairs
// ---------------------------------------------------------------------------

// CreatePair inserts an immutable primary/mirror pairing.
func (s *Store) CreatePair(primaryID, mirrorID int64, domain, strategy string) (*PairRecord, error) {
	if strategy == "" {
		strategy = "adversarial"
	}
	res, err := s.db.Exec(`INSERT INTO agent_pairs (primary_agent_id, mirror_agent_id, domain, strategy)
		VALUES (?, ?, ?, ?)`, primaryID, mirrorID, domain, strategy)
	if err != nil {
		return nil, fmt.Errorf("insert pair: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetPair(id)
}

// GetPair returns the pair with the given id.
func (s *Store) GetPair(id int64) (*PairRecord, error) {
	row := s.db.QueryRow(`SELECT id, primary_agent_id, mirror_agent_id, domain, strategy, created_at
		FROM agent_pairs WHERE id = ?`, id)
	p := &PairRecord{}
	err := row.Scan(&p.ID, &p.PrimaryAgentID, &p.MirrorAgentID, &p.Domain, &p.Strategy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pair: %w", err)
	}
	return p, nil
}

// ListPairs returns all pairs, optionally filtered by domain.
func (s *Store) ListPairs(domain string) ([]*PairRecord, error) {
	query := `SELECT id, primary_agent_id, mirror_agent_id, domain, strategy, created_at FROM agent_pairs`
	args := []any{}
	if domain != "" {
		query += ` WHERE domain = ?`
		args = append(args, domain)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	var out []*PairRecord
	for rows.Next() {
		p := &PairRecord{}
		if err := rows.Scan(&p.ID, &p.PrimaryAgentID, &p.MirrorAgentID, &p.Domain, &p.Strategy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*AgentRecord, error) {
	a := &AgentRecord{}
	err := row.Scan(&a.ID, &a.Name, &a.Domain, &a.Role, &a.Instruction, &a.Status,
		&a.TrainedAt, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	return a, nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
