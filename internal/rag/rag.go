// Package rag is the ingestion-and-retrieval core: it segments or derives
// chunks from parsed input, embeds them, and answers questions through
// hybrid (semantic + lexical) retrieval plus the generation provider.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/config"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/parser"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/segment"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/tabular"
)

// Store persists chunks, snapshots and conversation turns. Implemented by
// db.Store (Postgres) and memstore.Store (embedded).
type Store interface {
	PutChunks(ctx context.Context, chunks []models.Chunk) error
	PutSnapshot(ctx context.Context, snapshot *models.TableSnapshot) error
	SimilarChunks(ctx context.Context, vec []float32, k int, source string) ([]models.ScoredChunk, error)
	LexicalChunks(ctx context.Context, tokens []string, k int, source string) ([]models.Chunk, error)
	Snapshots(ctx context.Context, source string) ([]models.TableSnapshot, error)
	DeleteSource(ctx context.Context, source string) error
	AppendTurn(ctx context.Context, turn *models.ConversationTurn) error
	RecentTurns(ctx context.Context, limit int) ([]models.ConversationTurn, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer generates an answer from a system instruction and a prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type RAG struct {
	store     Store
	embedder  Embedder
	completer Completer
	cfg       *config.Config
}

func NewRAG(store Store, embedder Embedder, completer Completer, cfg *config.Config) *RAG {
	return &RAG{store: store, embedder: embedder, completer: completer, cfg: cfg}
}

type IngestResult struct {
	ChunksInserted    int `json:"inserted"`
	SnapshotsInserted int `json:"graphDataInserted"`
}

type QueryResult struct {
	Answer   string               `json:"answer"`
	Contexts []models.ScoredChunk `json:"contexts"`
}

// Ingest parses the file, derives chunks, embeds them with bounded
// concurrency and writes everything under source. With the replace policy
// prior chunks and snapshots for source are purged first. Partial writes
// are not rolled back when a later step fails.
func (r *RAG) Ingest(ctx context.Context, source, filename string, data []byte) (*IngestResult, error) {
	if source == "" {
		source = filename
	}
	if source == "" {
		return nil, fmt.Errorf("%w: missing source", ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}

	parsed, err := parser.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrValidation, filename, err)
	}

	if r.cfg.RAG.IngestPolicy == config.PolicyReplace {
		if err := r.store.DeleteSource(ctx, source); err != nil {
			return nil, fmt.Errorf("%w: purge source %s: %v", ErrStorage, source, err)
		}
	}

	var texts []string
	var snapshots [][]models.Row
	for _, table := range parsed.Tables {
		prefix := ""
		if table.Name != "" {
			prefix = "Sheet: " + table.Name
		}
		chunks, snapshot := tabular.Derive(table.Rows, prefix)
		texts = append(texts, chunks...)
		if len(snapshot) > 0 {
			snapshots = append(snapshots, snapshot)
		}
	}
	if strings.TrimSpace(parsed.Text) != "" {
		texts = append(texts, segment.Segment(parsed.Text, r.cfg.RAG.ChunkTokens)...)
	}

	kept := texts[:0]
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	texts = kept

	chunks, err := r.embedChunks(ctx, source, texts)
	if err != nil {
		return nil, err
	}
	if err := r.store.PutChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("%w: store chunks: %v", ErrStorage, err)
	}

	for _, rows := range snapshots {
		snapshot := &models.TableSnapshot{
			ID:        uuid.NewString(),
			Source:    source,
			TableData: rows,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.store.PutSnapshot(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("%w: store snapshot: %v", ErrStorage, err)
		}
	}

	log.Info().
		Str("source", source).
		Int("chunks", len(chunks)).
		Int("snapshots", len(snapshots)).
		Msg("ingested source")

	return &IngestResult{ChunksInserted: len(chunks), SnapshotsInserted: len(snapshots)}, nil
}

// embedChunks embeds texts with bounded concurrency. Each chunk's
// embedding call is independent, so the only ordering requirement is that
// the result slice lines up with the input.
func (r *RAG) embedChunks(ctx context.Context, source string, texts []string) ([]models.Chunk, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.RAG.EmbedConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := r.embedder.EmbedQuery(gctx, text)
			if err != nil {
				return err
			}
			vecs[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %v", ErrProvider, err)
	}

	now := time.Now().UTC()
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			ID:        uuid.NewString(),
			Source:    source,
			Content:   text,
			Embedding: pgvector.NewVector(vecs[i]),
			CreatedAt: now,
		}
	}
	return chunks, nil
}

// Query retrieves context for question, generates an answer and records
// the exchange in the conversation log.
func (r *RAG) Query(ctx context.Context, question string, k int, source string) (*QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: missing question", ErrValidation)
	}
	if k <= 0 {
		k = r.cfg.RAG.TopK
	}

	contexts, err := r.Retrieve(ctx, question, k, source)
	if err != nil {
		return nil, err
	}

	turns, err := r.store.RecentTurns(ctx, models.HistoryTurns)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrStorage, err)
	}

	answer, err := r.synthesize(ctx, question, contexts, turns)
	if err != nil {
		return nil, err
	}

	turn := &models.ConversationTurn{
		ID:        uuid.NewString(),
		Query:     question,
		Response:  answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.AppendTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("%w: append turn: %v", ErrStorage, err)
	}

	log.Debug().
		Str("question", question).
		Int("contexts", len(contexts)).
		Msg("answered query")

	return &QueryResult{Answer: answer, Contexts: contexts}, nil
}

// Retrieve runs semantic search and the lexical fallback, merges by chunk
// id and ranks by descending score. The fallback is always computed;
// lexical-only hits enter at the fixed fallback score so semantic matches
// win ties.
func (r *RAG) Retrieve(ctx context.Context, question string, k int, source string) ([]models.ScoredChunk, error) {
	vec, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %v", ErrProvider, err)
	}

	semantic, err := r.store.SimilarChunks(ctx, vec, k, source)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %v", ErrStorage, err)
	}

	lexical, err := r.store.LexicalChunks(ctx, Tokenize(question), k, source)
	if err != nil {
		return nil, fmt.Errorf("%w: lexical search: %v", ErrStorage, err)
	}

	return mergeResults(semantic, lexical, k), nil
}

// mergeResults combines semantic and lexical hits. The semantic result
// wins on a duplicate id; the output is sorted by non-increasing score and
// truncated to k.
func mergeResults(semantic []models.ScoredChunk, lexical []models.Chunk, k int) []models.ScoredChunk {
	seen := make(map[string]struct{}, len(semantic))
	merged := make([]models.ScoredChunk, 0, len(semantic)+len(lexical))
	for _, hit := range semantic {
		if _, ok := seen[hit.ID]; ok {
			continue
		}
		seen[hit.ID] = struct{}{}
		merged = append(merged, hit)
	}
	for _, chunk := range lexical {
		if _, ok := seen[chunk.ID]; ok {
			continue
		}
		seen[chunk.ID] = struct{}{}
		merged = append(merged, models.ScoredChunk{Chunk: chunk, Score: models.LexicalFallbackScore})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// synthesize builds the generation context from up to the last
// HistoryTurns conversation turns (oldest first) and the retrieved chunk
// contents, then asks the completion provider.
func (r *RAG) synthesize(ctx context.Context, question string, contexts []models.ScoredChunk, turns []models.ConversationTurn) (string, error) {
	var parts []string
	for i := len(turns) - 1; i >= 0; i-- {
		parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", turns[i].Query, turns[i].Response))
	}
	for _, c := range contexts {
		parts = append(parts, c.Content)
	}

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(parts, models.ContextSeparator), question)
	answer, err := r.completer.Complete(ctx, models.SystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("%w: completion: %v", ErrProvider, err)
	}
	return answer, nil
}

// Data returns table snapshots, newest first, optionally scoped by source.
func (r *RAG) Data(ctx context.Context, source string) ([]models.TableSnapshot, error) {
	snapshots, err := r.store.Snapshots(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: list snapshots: %v", ErrStorage, err)
	}
	return snapshots, nil
}

// Delete removes every chunk and snapshot ingested under source.
func (r *RAG) Delete(ctx context.Context, source string) error {
	if source == "" {
		return fmt.Errorf("%w: missing source", ErrValidation)
	}
	if err := r.store.DeleteSource(ctx, source); err != nil {
		return fmt.Errorf("%w: delete source %s: %v", ErrStorage, source, err)
	}
	return nil
}
