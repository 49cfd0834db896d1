package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

// Chunk is one retrievable unit of text with its embedding.
type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID        string          `bun:"id,pk" json:"id"`
	Source    string          `bun:"source,notnull" json:"source"`
	Content   string          `bun:"content,notnull" json:"content"`
	Embedding pgvector.Vector `bun:"embedding,notnull" json:"-"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ScoredChunk is a chunk together with its retrieval score.
// Score is 1 - cosine distance for semantic hits and a fixed fallback
// score for lexical-only hits.
type ScoredChunk struct {
	Chunk `bun:",extend"`

	Score float64 `bun:"score,scanonly" json:"score"`
}

// TableSnapshot keeps the raw rows of an ingested tabular source, next to
// the text chunks derived from it. Used for structured output such as charts.
type TableSnapshot struct {
	bun.BaseModel `bun:"table:table_snapshots,alias:ts"`

	ID        string    `bun:"id,pk" json:"id"`
	Source    string    `bun:"source,notnull" json:"source"`
	TableData []Row     `bun:"table_data,type:jsonb" json:"table_data"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ConversationTurn is one question/answer exchange, kept as a rolling
// short-term memory window for answer generation.
type ConversationTurn struct {
	bun.BaseModel `bun:"table:conversation_turns,alias:ct"`

	ID        string    `bun:"id,pk" json:"id"`
	Query     string    `bun:"query,notnull" json:"query"`
	Response  string    `bun:"response,nullzero" json:"response"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
