// Package aggregator discovers cross-domain knowledge connections and
// synthesizes insights across them.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dialectiq/dialectiq/internal/events"
	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
)

const (
	entriesPerDomain    = 5
	strategicEntryLimit = 20
	crossDomainLabel    = "cross-domain"
	crossConfidence     = 80
)

// Connection is a discovered topical overlap between two domains.
type Connection struct {
	Domain1      string   `json:"domain1"`
	Domain2      string   `json:"domain2"`
	CommonTopics []string `json:"common_topics"`
	Insights     string   `json:"insights"`
}

// Report is the outcome of one aggregation pass.
type Report struct {
	Connections        []Connection `json:"connections"`
	StrategicSynthesis string       `json:"strategic_synthesis"`
}

// Aggregator compares domains pairwise and synthesizes connections.
// Cost is O(d²) gateway calls for d domains plus one final call; pairs are
// deliberately not batched.
type Aggregator struct {
	knowledge *knowledge.Service
	gateway   gateway.Gateway
	publisher events.Publisher
}

// New creates an Aggregator. A nil publisher discards events.
func New(ks *knowledge.Service, gw gateway.Gateway, pub events.Publisher) *Aggregator {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Aggregator{knowledge: ks, gateway: gw, publisher: pub}
}

// AggregateAcrossDomains processes every unordered pair of distinct domains
// with non-empty current knowledge, then produces an overall strategic
// synthesis. Gateway failures abort the pass and surface to the caller.
func (a *Aggregator) AggregateAcrossDomains(ctx context.Context, domains []string) (*Report, error) {
	entries := make(map[string][]*knowledge.Entry, len(domains))
	for _, d := range domains {
		top, err := a.knowledge.TopInsights(d, entriesPerDomain)
		if err != nil {
			return nil, err
		}
		entries[d] = top
	}

	report := &Report{}
	for i := 0; i < len(domains); i++ {
		for j := i + 1; j < len(domains); j++ {
			d1, d2 := domains[i], domains[j]
			if len(entries[d1]) == 0 || len(entries[d2]) == 0 {
				continue
			}
			common := commonTopics(entries[d1], entries[d2])
			if len(common) == 0 {
				continue
			}
			insights, err := a.synthesizePair(ctx, d1, d2, common, entries[d1], entries[d2])
			if err != nil {
				return nil, err
			}
			report.Connections = append(report.Connections, Connection{
				Domain1:      d1,
				Domain2:      d2,
				CommonTopics: common,
				Insights:     insights,
			})
			slog.Info("cross-domain connection found", "domain1", d1, "domain2", d2, "topics", len(common))
		}
	}

	overall, err := a.synthesizeStrategic(ctx)
	if err != nil {
		return nil, err
	}
	report.StrategicSynthesis = overall
	return report, nil
}

// RunContinuousLearning runs a full aggregation pass and additionally
// persists each connection's insight as a new root knowledge entry under
// the synthetic cross-domain label. Embedding generation is attempted per
// entry but failure is downgraded to storing without an embedding.
func (a *Aggregator) RunContinuousLearning(ctx context.Context, domains []string) (*Report, error) {
	report, err := a.AggregateAcrossDomains(ctx, domains)
	if err != nil {
		return nil, err
	}

	embedder, canEmbed := a.gateway.(gateway.Embedder)
	for _, conn := range report.Connections {
		topic := conn.Domain1 + " / " + conn.Domain2
		entryID, err := a.knowledge.CreateEntry(crossDomainLabel, topic, conn.Insights, crossConfidence,
			nil, nil, []string{crossDomainLabel, conn.Domain1, conn.Domain2})
		if err != nil {
			return nil, err
		}
		a.publisher.Publish(ctx, events.TypeKnowledgeCreated, map[string]any{
			"entry_id": entryID,
			"domain":   crossDomainLabel,
			"topic":    topic,
		})
		if !canEmbed {
			continue
		}
		vector, err := embedder.Embed(ctx, conn.Insights)
		if err != nil {
			slog.Warn("embedding failed, storing without", "entry", entryID, "error", err)
			continue
		}
		if err := a.knowledge.AttachEmbedding(entryID, vector); err != nil {
			slog.Warn("attach embedding failed", "entry", entryID, "error", err)
		}
	}
	return report, nil
}

// commonTopics intersects topic substrings, case-insensitive containment
// either direction. The contained (shorter) topic is reported.
func commonTopics(left, right []*knowledge.Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range left {
		lt := strings.ToLower(l.Topic)
		for _, r := range right {
			rt := strings.ToLower(r.Topic)
			var match string
			switch {
			case strings.Contains(lt, rt):
				match = rt
			case strings.Contains(rt, lt):
				match = lt
			default:
				continue
			}
			if !seen[match] {
				seen[match] = true
				out = append(out, match)
			}
		}
	}
	return out
}

func (a *Aggregator) synthesizePair(ctx context.Context, d1, d2 string, common []string, e1, e2 []*knowledge.Entry) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Two knowledge domains overlap on these topics: %s\n\n", strings.Join(common, ", "))
	fmt.Fprintf(&b, "Top insights from %q:\n%s\n", d1, condense(e1))
	fmt.Fprintf(&b, "Top insights from %q:\n%s\n", d2, condense(e2))
	b.WriteString("Identify the cross-domain insight these overlaps suggest. Be concrete.")

	reply, err := a.gateway.Invoke(ctx, []gateway.Message{
		{Role: "system", Content: "You are a cross-domain analyst. You connect insights from different fields."},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func (a *Aggregator) synthesizeStrategic(ctx context.Context) (string, error) {
	top, err := a.knowledge.TopAcrossDomains(strategicEntryLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("The highest-confidence insights across all knowledge domains:\n\n")
	b.WriteString(condense(top))
	b.WriteString("\nProduce an overall strategic synthesis of where this knowledge base is heading.")

	reply, err := a.gateway.Invoke(ctx, []gateway.Message{
		{Role: "system", Content: "You are a strategic analyst reviewing an organization's accumulated knowledge."},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func condense(entries []*knowledge.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s (confidence %.0f): %s\n", e.Domain, e.Topic, e.Confidence, e.Insight)
	}
	return b.String()
}
