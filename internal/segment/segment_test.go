package segment

import (
	"strings"
	"testing"
)

func TestSegmentEmptyInput(t *testing.T) {
	if got := Segment("", 50); got != nil {
		t.Errorf("Segment(\"\") = %v, want nil", got)
	}
	if got := Segment("   \n\t  ", 50); got != nil {
		t.Errorf("Segment(whitespace) = %v, want nil", got)
	}
}

func TestSegmentChunksAreNonEmpty(t *testing.T) {
	text := "One. Two! Three? Four. Five five five five. Six."
	for _, chunk := range Segment(text, 3) {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("got empty chunk in %v", Segment(text, 3))
		}
	}
}

func TestSegmentReconstructsSentenceSequence(t *testing.T) {
	text := "The quick brown fox jumps. Over the lazy dog! Does it really? Yes.  It does."
	chunks := Segment(text, 5)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	joined := strings.Join(chunks, " ")
	want := strings.Join(SplitSentences(text), " ")
	if joined != want {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", joined, want)
	}
}

func TestSegmentRespectsTokenBudget(t *testing.T) {
	text := "a b c. d e f. g h i. j k l."
	chunks := Segment(text, 6)
	if len(chunks) != 2 {
		t.Fatalf("Segment() = %v, want 2 chunks", chunks)
	}
	for _, chunk := range chunks {
		if n := len(strings.Fields(chunk)); n > 6 {
			t.Errorf("chunk %q has %d tokens, budget is 6", chunk, n)
		}
	}
}

func TestSegmentOversizeSentenceEmittedWhole(t *testing.T) {
	long := "one two three four five six seven eight nine ten."
	chunks := Segment(long, 3)
	if len(chunks) != 1 {
		t.Fatalf("Segment() = %v, want single chunk", chunks)
	}
	if chunks[0] != long {
		t.Errorf("oversize sentence was altered: %q", chunks[0])
	}
}

func TestSegmentBudgetBoundary(t *testing.T) {
	// Two 3-token sentences fit exactly in a 6-token budget.
	text := "a b c. d e f."
	chunks := Segment(text, 6)
	if len(chunks) != 1 {
		t.Fatalf("Segment() = %v, want 1 chunk", chunks)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminators followed by space",
			text: "First. Second! Third?",
			want: []string{"First.", "Second!", "Third?"},
		},
		{
			name: "decimal points are not boundaries",
			text: "Value is 3.14 exactly. Next sentence.",
			want: []string{"Value is 3.14 exactly.", "Next sentence."},
		},
		{
			name: "trailing text without terminator",
			text: "Done. And some trailing words",
			want: []string{"Done.", "And some trailing words"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
