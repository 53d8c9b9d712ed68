// Package config provides configuration types and loading for dialectiq.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Paths, Model, Provider, Dialogue, Scheduler, Events.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Model     ModelConfig     `json:"model"`
	Provider  ProviderConfig  `json:"provider"`
	Dialogue  DialogueConfig  `json:"dialogue"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Events    EventsConfig    `json:"events"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	Workspace string `json:"workspace" envconfig:"WORKSPACE"`
	DBPath    string `json:"dbPath" envconfig:"DB_PATH"`
}

// ---------------------------------------------------------------------------
// Model – reasoning model behaviour
// ---------------------------------------------------------------------------

// ModelConfig groups reasoning-model settings.
type ModelConfig struct {
	Name           string  `json:"name" envconfig:"MODEL"`
	EmbeddingModel string  `json:"embeddingModel" envconfig:"EMBEDDING_MODEL"`
	MaxTokens      int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature    float64 `json:"temperature" envconfig:"TEMPERATURE"`
}

// ProviderConfig contains settings for the model gateway endpoint.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// ---------------------------------------------------------------------------
// Dialogue – debate/research defaults
// ---------------------------------------------------------------------------

// DialogueConfig groups dialogue engine defaults.
type DialogueConfig struct {
	DebateRounds int `json:"debateRounds" envconfig:"DEBATE_ROUNDS"`
}

// ---------------------------------------------------------------------------
// Scheduler – autonomous job settings
// ---------------------------------------------------------------------------

// SchedulerConfig contains settings for the two scheduler instances.
type SchedulerConfig struct {
	LearningEnabled bool          `json:"learningEnabled" envconfig:"LEARNING_ENABLED"`
	TrainingEnabled bool          `json:"trainingEnabled" envconfig:"TRAINING_ENABLED"`
	RetryDelay      time.Duration `json:"retryDelay"`
}

// ---------------------------------------------------------------------------
// Events – pipeline event publishing
// ---------------------------------------------------------------------------

// EventsConfig contains settings for the Kafka event publisher.
type EventsConfig struct {
	Enabled bool   `json:"enabled" envconfig:"EVENTS_ENABLED"`
	Brokers string `json:"brokers" envconfig:"EVENTS_BROKERS"`
	Topic   string `json:"topic" envconfig:"EVENTS_TOPIC"`
}
