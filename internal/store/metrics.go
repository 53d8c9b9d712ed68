package store

import (
	"database/sql"
	"fmt"
)

// GetAgentMetric returns the counter row for (agentID, day), if present.
func (s *Store) GetAgentMetric(agentID int64, day string) (*MetricRecord, bool, error) {
	row := s.db.QueryRow(`SELECT agent_id, day, dialogues_participated, knowledge_contributions,
		questions_asked, questions_answered, debates_won
		FROM agent_metrics WHERE agent_id = ? AND day = ?`, agentID, day)
	m := &MetricRecord{}
	err := row.Scan(&m.AgentID, &m.Day, &m.DialoguesParticipated, &m.KnowledgeContributions,
		&m.QuestionsAsked, &m.QuestionsAnswered, &m.DebatesWon)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get metric: %w", err)
	}
	return m, true, nil
}

// InsertAgentMetric creates the counter row for (agentID, day).
func (s *Store) InsertAgentMetric(m *MetricRecord) error {
	_, err := s.db.Exec(`INSERT INTO agent_metrics
		(agent_id, day, dialogues_participated, knowledge_contributions, questions_asked, questions_answered, debates_won)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.AgentID, m.Day, m.DialoguesParticipated, m.KnowledgeContributions,
		m.QuestionsAsked, m.QuestionsAnswered, m.DebatesWon)
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

// UpdateAgentMetric writes back the full counter row for (agentID, day).
func (s *Store) UpdateAgentMetric(m *MetricRecord) error {
	res, err := s.db.Exec(`UPDATE agent_metrics SET
		dialogues_participated = ?, knowledge_contributions = ?,
		questions_asked = ?, questions_answered = ?, debates_won = ?
		WHERE agent_id = ? AND day = ?`,
		m.DialoguesParticipated, m.KnowledgeContributions,
		m.QuestionsAsked, m.QuestionsAnswered, m.DebatesWon,
		m.AgentID, m.Day)
	if err != nil {
		return fmt.Errorf("update metric: %w", err)
	}
	return requireRows(res)
}

// ListMetricsSince returns all counter rows with day >= since (YYYY-MM-DD).
func (s *Store) ListMetricsSince(since string) ([]*MetricRecord, error) {
	rows, err := s.db.Query(`SELECT agent_id, day, dialogues_participated, knowledge_contributions,
		questions_asked, questions_answered, debates_won
		FROM agent_metrics WHERE day >= ? ORDER BY agent_id, day`, since)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var out []*MetricRecord
	for rows.Next() {
		m := &MetricRecord{}
		if err := rows.Scan(&m.AgentID, &m.Day, &m.DialoguesParticipated, &m.KnowledgeContributions,
			&m.QuestionsAsked, &m.QuestionsAnswered, &m.DebatesWon); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Feedback
// ---------------------------------------------------------------------------

// AddFeedback records one feedback item for an agent.
func (s *Store) AddFeedback(agentID int64, rating float64, comment string) (*FeedbackRecord, error) {
	res, err := s.db.Exec(`INSERT INTO agent_feedback (agent_id, rating, comment)
		VALUES (?, ?, ?)`, agentID, rating, comment)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	id, _ := res.LastInsertId()

	row := s.db.QueryRow(`SELECT id, agent_id, rating, comment, applied, created_at
		FROM agent_feedback WHERE id = ?`, id)
	f := &FeedbackRecord{}
	if err := row.Scan(&f.ID, &f.AgentID, &f.Rating, &f.Comment, &f.Applied, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	return f, nil
}

// ListUnappliedFeedback returns feedback not yet consumed by retraining.
func (s *Store) ListUnappliedFeedback(agentID int64) ([]*FeedbackRecord, error) {
	rows, err := s.db.Query(`SELECT id, agent_id, rating, comment, applied, created_at
		FROM agent_feedback WHERE agent_id = ? AND applied = 0 ORDER BY id`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []*FeedbackRecord
	for rows.Next() {
		f := &FeedbackRecord{}
		if err := rows.Scan(&f.ID, &f.AgentID, &f.Rating, &f.Comment, &f.Applied, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// MarkFeedbackApplied flags all unapplied feedback for an agent as consumed.
func (s *Store) MarkFeedbackApplied(agentID int64) error {
	_, err := s.db.Exec(`UPDATE agent_feedback SET applied = 1 WHERE agent_id = ? AND applied = 0`, agentID)
	if err != nil {
		return fmt.Errorf("mark feedback applied: %w", err)
	}
	return nil
}
