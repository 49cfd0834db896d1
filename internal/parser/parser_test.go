package parser

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Name,Value\nA,10\nB,20\n")
	parsed, err := Parse("report.csv", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(parsed.Tables))
	}

	rows := parsed.Tables[0].Rows
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Get("Name") != "A" || rows[0].Get("Value") != "10" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1].Get("Name") != "B" || rows[1].Get("Value") != "20" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestParseCSVRaggedRecords(t *testing.T) {
	data := []byte("Name,Value\nA\nB,20,extra\n")
	parsed, err := Parse("ragged.csv", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rows := parsed.Tables[0].Rows
	if rows[0].Get("Value") != "" {
		t.Errorf("short record Value = %q, want sentinel", rows[0].Get("Value"))
	}
	if rows[1].Get("Name") != "B" || rows[1].Get("Value") != "20" {
		t.Errorf("long record row = %v", rows[1])
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	parsed, err := Parse("empty.csv", []byte("Name,Value\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Tables) != 1 || len(parsed.Tables[0].Rows) != 0 {
		t.Errorf("header-only csv: %+v", parsed.Tables)
	}
}

func TestParseText(t *testing.T) {
	parsed, err := Parse("notes.txt", []byte("plain text here"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Text != "plain text here" || len(parsed.Tables) != 0 {
		t.Errorf("Parse() = %+v", parsed)
	}
}

func TestParseUnknownExtensionFallsBackToText(t *testing.T) {
	parsed, err := Parse("blob.xyz", []byte("raw bytes"))
	if err != nil {
		t.Fatalf("Parse() error = %v, want soft fallback", err)
	}
	if parsed.Text != "raw bytes" {
		t.Errorf("Text = %q", parsed.Text)
	}
}

func TestParseMarkdownStripsMarkup(t *testing.T) {
	md := []byte("# Heading\n\nSome *emphasis* and a [link](http://example.com).\n")
	parsed, err := Parse("doc.md", md)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	for _, marker := range []string{"#", "*", "[", "]", "(http"} {
		if strings.Contains(parsed.Text, marker) {
			t.Errorf("markup %q survived: %q", marker, parsed.Text)
		}
	}
	for _, word := range []string{"Heading", "emphasis", "link"} {
		if !strings.Contains(parsed.Text, word) {
			t.Errorf("text %q missing from %q", word, parsed.Text)
		}
	}
}
