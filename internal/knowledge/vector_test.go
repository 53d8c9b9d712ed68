package knowledge

import (
	"math"
	"testing"
)

func TestEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75}
	got := DecodeEmbedding(encodeFloat32s(vec))
	if len(got) != len(vec) {
		t.Fatalf("len = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestDecodeEmbeddingTruncatedBlob(t *testing.T) {
	if got := DecodeEmbedding([]byte{1, 2, 3}); got != nil {
		t.Errorf("decode of truncated blob = %v, want nil", got)
	}
	if got := DecodeEmbedding(nil); len(got) != 0 {
		t.Errorf("decode of nil blob = %v, want empty", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchSimilar(t *testing.T) {
	svc, _ := newTestService(t)

	seed := []struct {
		topic  string
		vector []float32
	}{
		{"exact match", []float32{1, 0, 0}},
		{"orthogonal", []float32{0, 1, 0}},
		{"near match", []float32{0.9, 0.1, 0}},
	}
	ids := make(map[string]int64)
	for _, e := range seed {
		id, err := svc.CreateEntry("physics", e.topic, "i", 80, nil, nil, nil)
		if err != nil {
			t.Fatalf("create %s: %v", e.topic, err)
		}
		if err := svc.AttachEmbedding(id, e.vector); err != nil {
			t.Fatalf("attach %s: %v", e.topic, err)
		}
		ids[e.topic] = id
	}
	// An entry without an embedding never matches.
	if _, err := svc.CreateEntry("physics", "unembedded", "i", 99, nil, nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	matches, err := svc.SearchSimilar([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("search similar: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	wantOrder := []string{"exact match", "near match", "orthogonal"}
	for i, topic := range wantOrder {
		if matches[i].Entry.ID != ids[topic] {
			t.Errorf("matches[%d] = %q, want %q", i, matches[i].Entry.Topic, topic)
		}
	}
	if matches[0].Similarity < 0.999 {
		t.Errorf("exact match similarity = %v, want ~1", matches[0].Similarity)
	}
	if matches[2].Similarity > 0.001 {
		t.Errorf("orthogonal similarity = %v, want ~0", matches[2].Similarity)
	}

	// Limit truncates after ranking.
	matches, err = svc.SearchSimilar([]float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search similar: %v", err)
	}
	if len(matches) != 1 || matches[0].Entry.ID != ids["exact match"] {
		t.Errorf("limited matches = %v", matches)
	}
}

func TestAttachEmbedding(t *testing.T) {
	svc, st := newTestService(t)

	id, err := svc.CreateEntry("physics", "t", "i", 80, nil, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.AttachEmbedding(id, []float32{1, 0, 0}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	rec, err := st.GetKnowledge(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got := DecodeEmbedding(rec.Embedding)
	if len(got) != 3 || got[0] != 1 {
		t.Errorf("stored embedding = %v", got)
	}
}
