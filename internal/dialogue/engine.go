// Package dialogue implements the debate and research orchestration runs
// between primary/mirror agent pairs.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
	"github.com/dialectiq/dialectiq/internal/metrics"
	"github.com/dialectiq/dialectiq/internal/store"
)

const (
	debateConfidence   = 85
	researchConfidence = 80
	defaultRounds      = 3
)

// Engine drives dialogue runs. All steps within one run are strictly
// sequential; a gateway failure anywhere aborts the run, leaving the
// dialogue in whatever state it reached and creating no knowledge entry.
type Engine struct {
	store     *store.Store
	gateway   gateway.Gateway
	knowledge *knowledge.Service
	metrics   *metrics.Tracker
}

// NewEngine creates a dialogue Engine.
func NewEngine(st *store.Store, gw gateway.Gateway, ks *knowledge.Service, mt *metrics.Tracker) *Engine {
	return &Engine{store: st, gateway: gw, knowledge: ks, metrics: mt}
}

// Result summarizes a completed run.
type Result struct {
	Dialogue    *store.DialogueRecord  `json:"dialogue"`
	Messages    []*store.MessageRecord `json:"messages"`
	KnowledgeID int64                  `json:"knowledge_id"`
}

// RunDebate conducts a structured debate: an opening thesis, N rounds of
// antithesis and rebuttal, and a neutral closing synthesis. A run with N
// rounds produces exactly 2N+2 messages.
func (e *Engine) RunDebate(ctx context.Context, pairID int64, topic string, rounds int) (*Result, error) {
	if rounds < 1 {
		rounds = defaultRounds
	}

	pair, err := e.store.GetPair(pairID)
	if err != nil {
		return nil, fmt.Errorf("pair %d: %w", pairID, err)
	}
	primary, err := e.store.GetAgent(pair.PrimaryAgentID)
	if err != nil {
		return nil, fmt.Errorf("primary agent %d: %w", pair.PrimaryAgentID, err)
	}
	mirror, err := e.store.GetAgent(pair.MirrorAgentID)
	if err != nil {
		return nil, fmt.Errorf("mirror agent %d: %w", pair.MirrorAgentID, err)
	}

	dlg, err := e.store.CreateDialogue(pairID, topic, store.KindDebate, uuid.NewString())
	if err != nil {
		return nil, err
	}
	slog.Info("debate started", "dialogue", dlg.ID, "pair", pairID, "topic", topic, "rounds", rounds)

	// Opening thesis, seeded only with the topic.
	thesis, err := e.ask(ctx, primary.Instruction, openingThesisPrompt(topic))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AppendMessage(dlg.ID, primary.ID, store.TagThesis, thesis); err != nil {
		return nil, err
	}

	lastPrimary := thesis
	for round := 1; round <= rounds; round++ {
		antithesis, err := e.ask(ctx, mirror.Instruction, antithesisPrompt(topic, lastPrimary))
		if err != nil {
			return nil, err
		}
		if _, err := e.store.AppendMessage(dlg.ID, mirror.ID, store.TagAntithesis, antithesis); err != nil {
			return nil, err
		}

		rebuttal, err := e.ask(ctx, primary.Instruction, rebuttalPrompt(topic, antithesis))
		if err != nil {
			return nil, err
		}
		if _, err := e.store.AppendMessage(dlg.ID, primary.ID, store.TagThesis, rebuttal); err != nil {
			return nil, err
		}
		lastPrimary = rebuttal
		slog.Debug("debate round completed", "dialogue", dlg.ID, "round", round)
	}

	// Neutral synthesis over the full transcript, appended under the
	// primary agent's identity.
	transcript, err := e.store.ListMessages(dlg.ID)
	if err != nil {
		return nil, err
	}
	synthesis, err := e.ask(ctx, synthesisInstruction, synthesisPrompt(topic, transcript))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AppendMessage(dlg.ID, primary.ID, store.TagSynthesis, synthesis); err != nil {
		return nil, err
	}

	if err := e.store.CompleteDialogue(dlg.ID); err != nil {
		return nil, err
	}

	entryID, err := e.knowledge.CreateEntry(pair.Domain, topic, synthesis, debateConfidence,
		[]int64{dlg.ID}, []int64{primary.ID, mirror.ID},
		[]string{pair.Domain, "debate", "synthesis"})
	if err != nil {
		return nil, err
	}

	e.metrics.Record(primary.ID, metrics.Delta{DialoguesParticipated: 1, KnowledgeContributions: 1})
	e.metrics.Record(mirror.ID, metrics.Delta{DialoguesParticipated: 1, KnowledgeContributions: 1})

	dlg, err = e.store.GetDialogue(dlg.ID)
	if err != nil {
		return nil, err
	}
	messages, err := e.store.ListMessages(dlg.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("debate completed", "dialogue", dlg.ID, "messages", len(messages), "entry", entryID)
	return &Result{Dialogue: dlg, Messages: messages, KnowledgeID: entryID}, nil
}

// RunResearch conducts a research session: the primary agent decomposes the
// question, the mirror answers all sub-questions in one pass, and the
// primary closes with a findings statement.
func (e *Engine) RunResearch(ctx context.Context, pairID int64, question string) (*Result, error) {
	pair, err := e.store.GetPair(pairID)
	if err != nil {
		return nil, fmt.Errorf("pair %d: %w", pairID, err)
	}
	primary, err := e.store.GetAgent(pair.PrimaryAgentID)
	if err != nil {
		return nil, fmt.Errorf("primary agent %d: %w", pair.PrimaryAgentID, err)
	}
	mirror, err := e.store.GetAgent(pair.MirrorAgentID)
	if err != nil {
		return nil, fmt.Errorf("mirror agent %d: %w", pair.MirrorAgentID, err)
	}

	dlg, err := e.store.CreateDialogue(pairID, question, store.KindResearch, uuid.NewString())
	if err != nil {
		return nil, err
	}
	slog.Info("research started", "dialogue", dlg.ID, "pair", pairID, "question", question)

	subQuestions, err := e.ask(ctx, primary.Instruction, decomposePrompt(question))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AppendMessage(dlg.ID, primary.ID, store.TagQuestion, subQuestions); err != nil {
		return nil, err
	}

	answers, err := e.ask(ctx, mirror.Instruction, answerPrompt(question, subQuestions))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AppendMessage(dlg.ID, mirror.ID, store.TagAnswer, answers); err != nil {
		return nil, err
	}

	findings, err := e.ask(ctx, primary.Instruction, findingsPrompt(question, subQuestions, answers))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AppendMessage(dlg.ID, primary.ID, store.TagObservation, findings); err != nil {
		return nil, err
	}

	if err := e.store.CompleteDialogue(dlg.ID); err != nil {
		return nil, err
	}

	entryID, err := e.knowledge.CreateEntry(pair.Domain, question, findings, researchConfidence,
		[]int64{dlg.ID}, []int64{primary.ID, mirror.ID},
		[]string{pair.Domain, "research", "findings"})
	if err != nil {
		return nil, err
	}

	e.metrics.Record(primary.ID, metrics.Delta{DialoguesParticipated: 1, KnowledgeContributions: 1, QuestionsAsked: 1})
	e.metrics.Record(mirror.ID, metrics.Delta{DialoguesParticipated: 1, KnowledgeContributions: 1, QuestionsAnswered: 1})

	dlg, err = e.store.GetDialogue(dlg.ID)
	if err != nil {
		return nil, err
	}
	messages, err := e.store.ListMessages(dlg.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("research completed", "dialogue", dlg.ID, "entry", entryID)
	return &Result{Dialogue: dlg, Messages: messages, KnowledgeID: entryID}, nil
}

// ask sends one system+user exchange to the gateway.
func (e *Engine) ask(ctx context.Context, instruction, prompt string) (string, error) {
	reply, err := e.gateway.Invoke(ctx, []gateway.Message{
		{Role: "system", Content: instruction},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}
