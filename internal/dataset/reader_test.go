package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

const sample = `{"id":"10.1145/1","title":"Braille displays","abstract":"We study refreshable braille.","author_keywords":"Braille; Haptics","year":2019,"cluster":"1"}

{"title":"Audio games","abstract":"[No abstract available]","author_keywords":null,"year":2020}
`

func TestRead(t *testing.T) {
	res, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(res.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(res.Documents))
	}
	d := res.Documents[0]
	if d.ID != "10.1145/1" || d.Year != 2019 || d.Cluster != "1" || d.Keywords != "Braille; Haptics" {
		t.Errorf("unexpected first document %+v", d)
	}
	d = res.Documents[1]
	if d.ID != "line-3" {
		t.Errorf("expected generated id line-3, got %q", d.ID)
	}
	if d.Abstract != "" || d.Keywords != "" {
		t.Errorf("expected empty abstract and keywords, got %+v", d)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].DocumentID != "line-3" {
		t.Errorf("expected one no-abstract warning, got %+v", res.Warnings)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"id": "a", "title": `},
		{"wrong type", `{"id": "a", "year": "2019"}`},
		{"duplicate id", "{\"id\":\"a\"}\n{\"id\":\"a\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 2 {
		t.Errorf("expected 2 documents, got %d", len(res.Documents))
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonl")); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing file, got %v", err)
	}
}
