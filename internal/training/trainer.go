// Package training retrains agents from accumulated feedback and measures
// agent performance over the metric history.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
	"github.com/dialectiq/dialectiq/internal/registry"
	"github.com/dialectiq/dialectiq/internal/store"
)

const (
	performanceDomain     = "meta"
	performanceConfidence = 70
	performanceWindow     = 7 * 24 * time.Hour
)

// Trainer runs the periodic agent-improvement passes.
type Trainer struct {
	store     *store.Store
	registry  *registry.Registry
	knowledge *knowledge.Service
	gateway   gateway.Gateway
	now       func() time.Time
}

// New creates a Trainer using the real clock.
func New(st *store.Store, reg *registry.Registry, ks *knowledge.Service, gw gateway.Gateway) *Trainer {
	return &Trainer{store: st, registry: reg, knowledge: ks, gateway: gw, now: time.Now}
}

// NewWithClock creates a Trainer with an injected clock for tests.
func NewWithClock(st *store.Store, reg *registry.Registry, ks *knowledge.Service, gw gateway.Gateway, now func() time.Time) *Trainer {
	return &Trainer{store: st, registry: reg, knowledge: ks, gateway: gw, now: now}
}

// RetrainAgents rewrites the system instruction of every active agent that
// has unapplied feedback. The agent passes through the training status and
// returns to active; consumed feedback is marked applied. A gateway failure
// aborts the pass and surfaces to the caller.
func (t *Trainer) RetrainAgents(ctx context.Context) (int, error) {
	agents, err := t.registry.ListAgents("")
	if err != nil {
		return 0, err
	}

	retrained := 0
	for _, agent := range agents {
		if agent.Status != store.AgentActive {
			continue
		}
		feedback, err := t.store.ListUnappliedFeedback(agent.ID)
		if err != nil {
			return retrained, err
		}
		if len(feedback) == 0 {
			continue
		}

		if err := t.registry.SetStatus(agent.ID, store.AgentTraining); err != nil {
			return retrained, err
		}

		improved, err := t.improveInstruction(ctx, agent, feedback)
		if err != nil {
			return retrained, err
		}

		if err := t.registry.ReplaceInstruction(agent.ID, improved); err != nil {
			return retrained, err
		}
		if err := t.store.MarkFeedbackApplied(agent.ID); err != nil {
			return retrained, err
		}
		if err := t.registry.SetStatus(agent.ID, store.AgentActive); err != nil {
			return retrained, err
		}
		retrained++
		slog.Info("agent retrained", "agent", agent.ID, "feedback_items", len(feedback))
	}
	return retrained, nil
}

// MeasurePerformance aggregates the last week of agent metrics into a
// performance summary persisted as a knowledge entry under the meta domain.
func (t *Trainer) MeasurePerformance(ctx context.Context) (int64, error) {
	since := t.now().Add(-performanceWindow).Format("2006-01-02")
	rows, err := t.store.ListMetricsSince(since)
	if err != nil {
		return 0, err
	}

	type total struct {
		dialogues, contributions, asked, answered, won int
	}
	totals := make(map[int64]*total)
	var order []int64
	for _, m := range rows {
		agg, ok := totals[m.AgentID]
		if !ok {
			agg = &total{}
			totals[m.AgentID] = agg
			order = append(order, m.AgentID)
		}
		agg.dialogues += m.DialoguesParticipated
		agg.contributions += m.KnowledgeContributions
		agg.asked += m.QuestionsAsked
		agg.answered += m.QuestionsAnswered
		agg.won += m.DebatesWon
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agent performance since %s:\n", since)
	if len(order) == 0 {
		b.WriteString("no recorded activity\n")
	}
	for _, id := range order {
		agg := totals[id]
		name := fmt.Sprintf("agent %d", id)
		if agent, err := t.registry.GetAgent(id); err == nil {
			name = agent.Name
		}
		fmt.Fprintf(&b, "- %s: %d dialogues, %d contributions, %d questions asked, %d answered, %d debates won\n",
			name, agg.dialogues, agg.contributions, agg.asked, agg.answered, agg.won)
	}

	topic := "agent performance week of " + since
	entryID, err := t.knowledge.CreateEntry(performanceDomain, topic, b.String(), performanceConfidence,
		nil, order, []string{performanceDomain, "performance"})
	if err != nil {
		return 0, err
	}
	slog.Info("performance measured", "agents", len(order), "entry", entryID)
	return entryID, nil
}

func (t *Trainer) improveInstruction(ctx context.Context, agent *store.AgentRecord, feedback []*store.FeedbackRecord) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "An agent operates with this system instruction:\n\n%s\n\n", agent.Instruction)
	b.WriteString("It received the following feedback:\n")
	for _, f := range feedback {
		fmt.Fprintf(&b, "- (rating %.1f) %s\n", f.Rating, f.Comment)
	}
	b.WriteString("\nRewrite the system instruction to address the feedback. " +
		"Return only the new instruction text.")

	reply, err := t.gateway.Invoke(ctx, []gateway.Message{
		{Role: "system", Content: "You refine system instructions for reasoning agents based on performance feedback."},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Content), nil
}
