package store

import (
	"database/sql"
	"fmt"
)

// CreateDialogue opens a new dialogue for a pair with status active.
func (s *Store) CreateDialogue(pairID int64, topic, kind, traceID string) (*DialogueRecord, error) {
	res, err := s.db.Exec(`INSERT INTO dialogues (pair_id, topic, kind, status, trace_id)
		VALUES (?, ?, ?, ?, ?)`, pairID, topic, kind, DialogueActive, traceID)
	if err != nil {
		return nil, fmt.Errorf("insert dialogue: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetDialogue(id)
}

// GetDialogue returns the dialogue with the given id.
func (s *Store) GetDialogue(id int64) (*DialogueRecord, error) {
	row := s.db.QueryRow(`SELECT id, pair_id, topic, kind, status, trace_id, started_at, completed_at
		FROM dialogues WHERE id = ?`, id)
	d := &DialogueRecord{}
	err := row.Scan(&d.ID, &d.PairID, &d.Topic, &d.Kind, &d.Status, &d.TraceID, &d.StartedAt, &d.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dialogue: %w", err)
	}
	return d, nil
}

// CompleteDialogue marks the dialogue completed. The completed_at timestamp
// is set at most once; completing an already-completed dialogue is a no-op.
func (s *Store) CompleteDialogue(id int64) error {
	res, err := s.db.Exec(`UPDATE dialogues
		SET status = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND completed_at IS NULL`, DialogueCompleted, id)
	if err != nil {
		return fmt.Errorf("complete dialogue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguish missing from already completed.
		if _, err := s.GetDialogue(id); err != nil {
			return err
		}
	}
	return nil
}

// AppendMessage appends an ordered, immutable message to a dialogue.
func (s *Store) AppendMessage(dialogueID, agentID int64, tag, content string) (*MessageRecord, error) {
	res, err := s.db.Exec(`INSERT INTO dialogue_messages (dialogue_id, agent_id, tag, content)
		VALUES (?, ?, ?, ?)`, dialogueID, agentID, tag, content)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, _ := res.LastInsertId()

	row := s.db.QueryRow(`SELECT id, dialogue_id, agent_id, tag, content, created_at
		FROM dialogue_messages WHERE id = ?`, id)
	m := &MessageRecord{}
	if err := row.Scan(&m.ID, &m.DialogueID, &m.AgentID, &m.Tag, &m.Content, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return m, nil
}

// ListMessages returns all messages of a dialogue in creation order.
func (s *Store) ListMessages(dialogueID int64) ([]*MessageRecord, error) {
	rows, err := s.db.Query(`SELECT id, dialogue_id, agent_id, tag, content, created_at
		FROM dialogue_messages WHERE dialogue_id = ? ORDER BY id`, dialogueID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*MessageRecord
	for rows.Next() {
		m := &MessageRecord{}
		if err := rows.Scan(&m.ID, &m.DialogueID, &m.AgentID, &m.Tag, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
