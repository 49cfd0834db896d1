// Package memstore is the embedded chunk store, used when no Postgres URL
// is configured and by tests. Vectors live in a chromem-go collection;
// chromem only stores vectors and metadata, so chunk records, snapshots
// and conversation turns are tracked next to it under one lock.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
)

const collectionName = "chunks"

type Store struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	chunks     []models.Chunk // insertion order, oldest first
	snapshots  []models.TableSnapshot
	turns      []models.ConversationTurn
}

// New creates an embedded store. An empty path keeps everything in
// memory; otherwise chromem persists the collection under path.
func New(path string) (*Store, error) {
	var cdb *chromem.DB
	var err error
	if path == "" {
		cdb = chromem.NewDB()
	} else {
		cdb, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("create persistent db: %w", err)
		}
	}

	// Embeddings are always precomputed by the caller; chromem must never
	// reach for a provider on its own.
	embedStub := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("memstore: embeddings must be precomputed")
	}
	collection, err := cdb.GetOrCreateCollection(collectionName, nil, embedStub)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{db: cdb, collection: collection}, nil
}

func (s *Store) PutChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Metadata:  map[string]string{"source": chunk.Source},
			Embedding: chunk.Embedding.Slice(),
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, chunks...)
	s.mu.Unlock()
	return nil
}

func (s *Store) PutSnapshot(ctx context.Context, snapshot *models.TableSnapshot) error {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, *snapshot)
	s.mu.Unlock()
	return nil
}

func (s *Store) SimilarChunks(ctx context.Context, vec []float32, k int, source string) ([]models.ScoredChunk, error) {
	var where map[string]string
	if source != "" {
		where = map[string]string{"source": source}
	}

	s.mu.RLock()
	eligible := 0
	byID := make(map[string]models.Chunk, len(s.chunks))
	for _, chunk := range s.chunks {
		byID[chunk.ID] = chunk
		if source == "" || chunk.Source == source {
			eligible++
		}
	}
	s.mu.RUnlock()

	// chromem rejects result counts above what the collection can return.
	n := k
	if n > eligible {
		n = eligible
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vec, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		chunk, ok := byID[res.ID]
		if !ok {
			continue
		}
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Score: float64(res.Similarity)})
	}
	return scored, nil
}

func (s *Store) LexicalChunks(ctx context.Context, tokens []string, k int, source string) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Chunk
	for i := len(s.chunks) - 1; i >= 0 && len(matched) < k; i-- {
		chunk := s.chunks[i]
		if source != "" && chunk.Source != source {
			continue
		}
		if containsAll(chunk.Content, tokens) {
			matched = append(matched, chunk)
		}
	}
	return matched, nil
}

func containsAll(content string, tokens []string) bool {
	lower := strings.ToLower(content)
	for _, token := range tokens {
		if !strings.Contains(lower, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

func (s *Store) Snapshots(ctx context.Context, source string) ([]models.TableSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TableSnapshot
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if source == "" || s.snapshots[i].Source == source {
			out = append(out, s.snapshots[i])
		}
	}
	return out, nil
}

func (s *Store) DeleteSource(ctx context.Context, source string) error {
	if err := s.collection.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, chunk := range s.chunks {
		if chunk.Source != source {
			kept = append(kept, chunk)
		}
	}
	s.chunks = kept

	keptSnaps := s.snapshots[:0]
	for _, snap := range s.snapshots {
		if snap.Source != source {
			keptSnaps = append(keptSnaps, snap)
		}
	}
	s.snapshots = keptSnaps
	return nil
}

func (s *Store) AppendTurn(ctx context.Context, turn *models.ConversationTurn) error {
	s.mu.Lock()
	s.turns = append(s.turns, *turn)
	s.mu.Unlock()
	return nil
}

func (s *Store) RecentTurns(ctx context.Context, limit int) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ConversationTurn
	for i := len(s.turns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.turns[i])
	}
	return out, nil
}
