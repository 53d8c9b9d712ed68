package store

import (
	"time"
)

// Agent lifecycle statuses.
const (
	AgentActive   = "active"
	AgentInactive = "inactive"
	AgentTraining = "training"
)

// Agent roles within a pair.
const (
	RolePrimary = "primary"
	RoleMirror  = "mirror"
)

// Dialogue kinds.
const (
	KindDebate              = "debate"
	KindResearch            = "research"
	KindKnowledgeRefinement = "knowledge_refinement"
	KindQuestionSeeking     = "question_seeking"
)

// Dialogue statuses.
const (
	DialogueActive    = "active"
	DialogueCompleted = "completed"
	DialogueArchived  = "archived"
)

// Dialogue message tags.
const (
	TagThesis      = "thesis"
	TagAntithesis  = "antithesis"
	TagSynthesis   = "synthesis"
	TagQuestion    = "question"
	TagAnswer      = "answer"
	TagObservation = "observation"
)

// AgentRecord represents a reasoning agent.
type AgentRecord struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Domain      string     `json:"domain"`
	Role        string     `json:"role"` // primary | mirror
	Instruction string     `json:"instruction"`
	Status      string     `json:"status"` // active | inactive | training
	TrainedAt   *time.Time `json:"trained_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PairRecord represents an immutable primary/mirror agent pairing.
type PairRecord struct {
	ID             int64     `json:"id"`
	PrimaryAgentID int64     `json:"primary_agent_id"`
	MirrorAgentID  int64     `json:"mirror_agent_id"`
	Domain         string    `json:"domain"`
	Strategy       string    `json:"strategy"`
	CreatedAt      time.Time `json:"created_at"`
}

// DialogueRecord represents one orchestration run between a pair.
type DialogueRecord struct {
	ID          int64      `json:"id"`
	PairID      int64      `json:"pair_id"`
	Topic       string     `json:"topic"`
	Kind        string     `json:"kind"`   // debate | research | knowledge_refinement | question_seeking
	Status      string     `json:"status"` // active | completed | archived
	TraceID     string     `json:"trace_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MessageRecord is one append-only dialogue message.
type MessageRecord struct {
	ID         int64     `json:"id"`
	DialogueID int64     `json:"dialogue_id"`
	AgentID    int64     `json:"agent_id"`
	Tag        string    `json:"tag"` // thesis | antithesis | synthesis | question | answer | observation
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// KnowledgeRecord is one immutable version of a knowledge lineage.
// Sources, Contributors and Tags are stored as JSON arrays.
type KnowledgeRecord struct {
	ID           int64     `json:"id"`
	Domain       string    `json:"domain"`
	Topic        string    `json:"topic"`
	Insight      string    `json:"insight"`
	Confidence   float64   `json:"confidence"`
	Sources      string    `json:"sources"`      // JSON array of dialogue ids
	Contributors string    `json:"contributors"` // JSON array of agent ids
	Tags         string    `json:"tags"`         // JSON array
	Version      int       `json:"version"`
	Supersedes   *int64    `json:"supersedes,omitempty"`
	Embedding    []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MetricRecord holds per-agent, per-calendar-day counters.
// Day is formatted as YYYY-MM-DD.
type MetricRecord struct {
	AgentID                int64  `json:"agent_id"`
	Day                    string `json:"day"`
	DialoguesParticipated  int    `json:"dialogues_participated"`
	KnowledgeContributions int    `json:"knowledge_contributions"`
	QuestionsAsked         int    `json:"questions_asked"`
	QuestionsAnswered      int    `json:"questions_answered"`
	DebatesWon             int    `json:"debates_won"`
}

// FeedbackRecord is accumulated feedback consumed by agent retraining.
type FeedbackRecord struct {
	ID        int64     `json:"id"`
	AgentID   int64     `json:"agent_id"`
	Rating    float64   `json:"rating"` // 0.0 - 1.0
	Comment   string    `json:"comment"`
	Applied   bool      `json:"applied"`
	CreatedAt time.Time `json:"created_at"`
}

// DomainStat holds aggregate knowledge counts for one domain.
type DomainStat struct {
	Domain        string  `json:"domain"`
	Entries       int     `json:"entries"`
	AvgConfidence float64 `json:"avg_confidence"`
}

const Schema = `
CREATE TABLE IF NOT EXISTS agents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	domain TEXT NOT NULL,
	role TEXT NOT NULL,
	instruction TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	trained_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_agents_domain ON agents(domain);
CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status);

CREATE TABLE IF NOT EXISTS agent_pairs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	primary_agent_id INTEGER NOT NULL,
	mirror_agent_id INTEGER NOT NULL,
	domain TEXT NOT NULL,
	strategy TEXT NOT NULL DEFAULT 'adversarial',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pairs_domain ON agent_pairs(domain);

CREATE TABLE IF NOT EXISTS dialogues (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pair_id INTEGER NOT NULL,
	topic TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	trace_id TEXT DEFAULT '',
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_dialogues_pair ON dialogues(pair_id);
CREATE INDEX IF NOT EXISTS idx_dialogues_status ON dialogues(status);

CREATE TABLE IF NOT EXISTS dialogue_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dialogue_id INTEGER NOT NULL,
	agent_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_dialogue ON dialogue_messages(dialogue_id);

CREATE TABLE IF NOT EXISTS knowledge_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain TEXT NOT NULL,
	topic TEXT NOT NULL,
	insight TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	sources TEXT NOT NULL DEFAULT '[]',
	contributors TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	version INTEGER NOT NULL DEFAULT 1,
	supersedes INTEGER,
	embedding BLOB,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_knowledge_domain ON knowledge_entries(domain);
CREATE INDEX IF NOT EXISTS idx_knowledge_supersedes ON knowledge_entries(supersedes);

CREATE TABLE IF NOT EXISTS agent_metrics (
	agent_id INTEGER NOT NULL,
	day TEXT NOT NULL,
	dialogues_participated INTEGER NOT NULL DEFAULT 0,
	knowledge_contributions INTEGER NOT NULL DEFAULT 0,
	questions_asked INTEGER NOT NULL DEFAULT 0,
	questions_answered INTEGER NOT NULL DEFAULT 0,
	debates_won INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (agent_id, day)
);

CREATE TABLE IF NOT EXISTS agent_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_id INTEGER NOT NULL,
	rating REAL NOT NULL DEFAULT 0.5,
	comment TEXT NOT NULL DEFAULT '',
	applied INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_feedback_agent ON agent_feedback(agent_id, applied);
`
