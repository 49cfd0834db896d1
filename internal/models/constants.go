package models

const (
	// ContextSeparator joins history turns and retrieved chunks into the
	// prompt context.
	ContextSeparator = "\n---\n"

	// LexicalFallbackScore is assigned to chunks found only by the lexical
	// fallback. It sits below any genuine semantic match so semantic hits
	// win on ties, but above irrelevant results.
	LexicalFallbackScore = 0.75

	// HistoryTurns is how many recent conversation turns are prepended to
	// the generation context.
	HistoryTurns = 3
)

const SystemPrompt = `You are a helpful assistant. Answer the question using only the provided context. If the context does not contain the answer, say that you do not know instead of guessing.`
