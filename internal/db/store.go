package db

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
)

// Store is the Postgres-backed chunk store. Similarity search rides the
// pgvector cosine-distance operator; lexical search is a conjunctive
// ILIKE match ordered newest first.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) PutChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&chunks).Exec(ctx)
	return err
}

func (s *Store) PutSnapshot(ctx context.Context, snapshot *models.TableSnapshot) error {
	_, err := s.db.NewInsert().Model(snapshot).Exec(ctx)
	return err
}

// SimilarChunks returns up to k chunks ordered by descending cosine
// similarity to vec. Score is 1 - cosine distance.
func (s *Store) SimilarChunks(ctx context.Context, vec []float32, k int, source string) ([]models.ScoredChunk, error) {
	qvec := pgvector.NewVector(vec)
	var results []models.ScoredChunk
	q := s.db.NewSelect().
		Model(&results).
		ColumnExpr("c.*").
		ColumnExpr("1 - (c.embedding <=> ?) AS score", qvec).
		OrderExpr("c.embedding <=> ?", qvec).
		Limit(k)
	if source != "" {
		q = q.Where("c.source = ?", source)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// LexicalChunks returns up to k chunks whose content contains every token
// as a case-insensitive substring, most recently created first. An empty
// token set matches everything, bounded by k.
func (s *Store) LexicalChunks(ctx context.Context, tokens []string, k int, source string) ([]models.Chunk, error) {
	var chunks []models.Chunk
	q := s.db.NewSelect().Model(&chunks)
	for _, token := range tokens {
		q = q.Where("c.content ILIKE ?", "%"+token+"%")
	}
	if source != "" {
		q = q.Where("c.source = ?", source)
	}
	q = q.OrderExpr("c.created_at DESC").Limit(k)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *Store) Snapshots(ctx context.Context, source string) ([]models.TableSnapshot, error) {
	var snapshots []models.TableSnapshot
	q := s.db.NewSelect().Model(&snapshots).OrderExpr("ts.created_at DESC")
	if source != "" {
		q = q.Where("ts.source = ?", source)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// DeleteSource removes all chunks and table snapshots for source.
// Conversation turns are untouched: they are not keyed by source.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	if _, err := s.db.NewDelete().Model((*models.Chunk)(nil)).Where("source = ?", source).Exec(ctx); err != nil {
		return err
	}
	_, err := s.db.NewDelete().Model((*models.TableSnapshot)(nil)).Where("source = ?", source).Exec(ctx)
	return err
}

func (s *Store) AppendTurn(ctx context.Context, turn *models.ConversationTurn) error {
	_, err := s.db.NewInsert().Model(turn).Exec(ctx)
	return err
}

func (s *Store) RecentTurns(ctx context.Context, limit int) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	err := s.db.NewSelect().
		Model(&turns).
		OrderExpr("ct.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return turns, nil
}
