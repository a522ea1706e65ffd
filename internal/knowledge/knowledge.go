package knowledge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"klema-chatbot/internal/rag"
)

//go:embed knowledge_base.yaml
var embedded []byte

// ErrDuplicateID is returned when two entries share an id.
var ErrDuplicateID = errors.New("duplicate knowledge entry id")

type document struct {
	Entries []rag.KnowledgeEntry `yaml:"entries"`
}

// Default returns the knowledge base compiled into the binary.
func Default() ([]rag.KnowledgeEntry, error) {
	return Parse(embedded)
}

// Load reads a knowledge base file. An empty path returns the embedded one.
func Load(path string) ([]rag.KnowledgeEntry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge base %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes and validates a YAML knowledge base document.
func Parse(data []byte) ([]rag.KnowledgeEntry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	if err := validate(doc.Entries); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func validate(entries []rag.KnowledgeEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: id is required", i)
		}
		if e.Title == "" && e.Content == "" {
			return fmt.Errorf("entry %s: title or content is required", e.ID)
		}
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
