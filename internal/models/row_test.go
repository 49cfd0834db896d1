package models

import (
	"encoding/json"
	"testing"
)

func TestRowMarshalPreservesOrder(t *testing.T) {
	row := RowFromPairs("Zeta", "1", "Alpha", "2", "Mid", "3")
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Zeta":"1","Alpha":"2","Mid":"3"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestRowJSONRoundTrip(t *testing.T) {
	row := RowFromPairs("Name", "A", "Value", "10")
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Row
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Equal(row) {
		t.Errorf("round trip = %v, want %v", decoded, row)
	}
}

func TestRowMissingField(t *testing.T) {
	row := RowFromPairs("Name", "A")
	if got := row.Get("Value"); got != MissingValue {
		t.Errorf("Get(missing) = %q, want sentinel %q", got, MissingValue)
	}
	if row.Has("Value") {
		t.Error("Has(missing) = true")
	}
}

func TestRowSetOverwriteKeepsPosition(t *testing.T) {
	row := RowFromPairs("A", "1", "B", "2")
	row.Set("A", "9")
	fields := row.Fields()
	if len(fields) != 2 || fields[0] != "A" {
		t.Errorf("Fields() = %v", fields)
	}
	if row.Get("A") != "9" {
		t.Errorf("Get(A) = %q, want 9", row.Get("A"))
	}
}
