package scoring_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/testgenius/backend/internal/scoring"
)

func TestParseKeyFile_PlainText(t *testing.T) {
	data := []byte("Paris\nBerlin\n\nMadrid\n")

	answers, err := scoring.ParseKeyFile(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Paris", "Berlin", "Madrid"}
	if len(answers) != len(want) {
		t.Fatalf("expected %d answers, got %d", len(want), len(answers))
	}
	for i := range want {
		if answers[i] != want[i] {
			t.Errorf("answer %d: expected %q, got %q", i, want[i], answers[i])
		}
	}
}

func TestParseKeyFile_JSONArray(t *testing.T) {
	data := []byte(`["Paris", "Berlin", "Madrid"]`)

	answers, err := scoring.ParseKeyFile(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	if answers[1] != "Berlin" {
		t.Errorf("expected second answer Berlin, got %q", answers[1])
	}
}

func TestParseKeyFile_InvalidJSON(t *testing.T) {
	_, err := scoring.ParseKeyFile([]byte(`["Paris",`))
	if !errors.Is(err, scoring.ErrKeyFileInvalid) {
		t.Errorf("expected ErrKeyFileInvalid, got %v", err)
	}
}

func TestParseKeyFile_Empty(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("   \n  \n"), []byte("[]")} {
		if _, err := scoring.ParseKeyFile(data); !errors.Is(err, scoring.ErrKeyFileEmpty) {
			t.Errorf("ParseKeyFile(%q): expected ErrKeyFileEmpty, got %v", data, err)
		}
	}
}

func TestParseKeyFile_TooBig(t *testing.T) {
	data := bytes.Repeat([]byte("A\n"), scoring.MaxKeyFileBytes)

	_, err := scoring.ParseKeyFile(data)
	if !errors.Is(err, scoring.ErrKeyFileTooBig) {
		t.Errorf("expected ErrKeyFileTooBig, got %v", err)
	}
}
