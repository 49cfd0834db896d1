package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func chunk(id, source, content string, vec []float32) models.Chunk {
	return models.Chunk{
		ID:        id,
		Source:    source,
		Content:   content,
		Embedding: pgvector.NewVector(vec),
		CreatedAt: time.Now().UTC(),
	}
}

func TestSimilarChunksRanking(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutChunks(ctx, []models.Chunk{
		chunk("x", "doc", "points east", []float32{1, 0, 0}),
		chunk("y", "doc", "points north", []float32{0, 1, 0}),
		chunk("diag", "doc", "points northeast", []float32{0.7071, 0.7071, 0}),
	})
	if err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}

	results, err := s.SimilarChunks(ctx, []float32{1, 0, 0}, 2, "")
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "x" {
		t.Errorf("top result = %q, want x", results[0].ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores out of order: %v", results)
	}
}

func TestSimilarChunksKLargerThanStore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.PutChunks(ctx, []models.Chunk{chunk("only", "doc", "text", []float32{1, 0})}); err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}
	results, err := s.SimilarChunks(ctx, []float32{1, 0}, 10, "")
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSimilarChunksEmptyStore(t *testing.T) {
	s := newStore(t)
	results, err := s.SimilarChunks(context.Background(), []float32{1, 0}, 5, "")
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty store", len(results))
	}
}

func TestSimilarChunksSourceFilter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutChunks(ctx, []models.Chunk{
		chunk("a1", "alpha", "alpha text", []float32{1, 0}),
		chunk("b1", "beta", "beta text", []float32{1, 0}),
	})
	if err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}

	results, err := s.SimilarChunks(ctx, []float32{1, 0}, 5, "alpha")
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	for _, res := range results {
		if res.Source != "alpha" {
			t.Errorf("source filter leaked chunk from %q", res.Source)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestLexicalChunksConjunctive(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutChunks(ctx, []models.Chunk{
		chunk("1", "doc", "Revenue grew in March", []float32{1}),
		chunk("2", "doc", "Revenue fell in April", []float32{1}),
		chunk("3", "doc", "Costs grew in March", []float32{1}),
	})
	if err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}

	results, err := s.LexicalChunks(ctx, []string{"revenue", "march"}, 10, "")
	if err != nil {
		t.Fatalf("LexicalChunks() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "1" {
		t.Errorf("conjunctive match = %v", results)
	}
}

func TestLexicalChunksNewestFirstAndBounded(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutChunks(ctx, []models.Chunk{
		chunk("old", "doc", "shared term", []float32{1}),
		chunk("new", "doc", "shared term again", []float32{1}),
	})
	if err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}

	results, err := s.LexicalChunks(ctx, []string{"shared"}, 1, "")
	if err != nil {
		t.Fatalf("LexicalChunks() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("newest-first bounded match = %v", results)
	}

	// Empty token set is an empty conjunction: bounded, most recent first.
	results, err = s.LexicalChunks(ctx, nil, 1, "")
	if err != nil {
		t.Fatalf("LexicalChunks(nil tokens) error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("empty conjunction returned %d results, want 1", len(results))
	}
}

func TestDeleteSource(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutChunks(ctx, []models.Chunk{
		chunk("keep", "stay", "kept", []float32{1, 0}),
		chunk("drop", "gone", "dropped", []float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("PutChunks() error = %v", err)
	}
	if err := s.PutSnapshot(ctx, &models.TableSnapshot{ID: "snap", Source: "gone"}); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	if err := s.DeleteSource(ctx, "gone"); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}

	results, err := s.SimilarChunks(ctx, []float32{0, 1}, 5, "")
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	for _, res := range results {
		if res.Source == "gone" {
			t.Errorf("deleted source still searchable: %v", res)
		}
	}

	snapshots, err := s.Snapshots(ctx, "gone")
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("deleted source still has %d snapshots", len(snapshots))
	}
}

func TestSnapshotsNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		if err := s.PutSnapshot(ctx, &models.TableSnapshot{ID: id, Source: "doc"}); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
	}
	snapshots, err := s.Snapshots(ctx, "doc")
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	if len(snapshots) != 2 || snapshots[0].ID != "second" {
		t.Errorf("Snapshots() = %v, want newest first", snapshots)
	}
}

func TestTurns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, q := range []string{"q1", "q2", "q3", "q4"} {
		err := s.AppendTurn(ctx, &models.ConversationTurn{ID: q, Query: q, Response: "a"})
		if err != nil {
			t.Fatalf("AppendTurn() error = %v", err)
		}
	}

	turns, err := s.RecentTurns(ctx, 3)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].Query != "q4" || turns[2].Query != "q2" {
		t.Errorf("RecentTurns() order = %v", turns)
	}
}
