// Package knowledge holds the static question/answer and topic tables the
// assistant answers from without contacting the server.
//
// The tables ship as YAML embedded in the binary. A different file can be
// loaded with Load, for example to localise the answers.
package knowledge

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultTables []byte

// Entry maps a question fragment to an answer.
type Entry struct {
	Match  string `yaml:"match"`
	Answer string `yaml:"answer"`
}

// Topic is a browsable conversation topic with a markdown body.
type Topic struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

type tables struct {
	Fallback  string  `yaml:"fallback"`
	Questions []Entry `yaml:"questions"`
	Topics    []Topic `yaml:"topics"`
}

// Base answers knowledge lookups. It is immutable once built.
type Base struct {
	fallback string
	entries  []Entry
	topics   []Topic
}

// Load parses a knowledge table from YAML.
func Load(r io.Reader) (*Base, error) {
	var t tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge tables: %w", err)
	}

	return newBase(t)
}

func newBase(t tables) (*Base, error) {
	if strings.TrimSpace(t.Fallback) == "" {
		return nil, fmt.Errorf("knowledge tables: fallback answer is required")
	}

	entries := make([]Entry, 0, len(t.Questions))
	seen := make(map[string]bool, len(t.Questions))
	for i, e := range t.Questions {
		key := strings.ToLower(strings.TrimSpace(e.Match))
		if key == "" {
			return nil, fmt.Errorf("knowledge tables: question %d has an empty match", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("knowledge tables: duplicate match %q", key)
		}
		seen[key] = true
		entries = append(entries, Entry{Match: key, Answer: strings.TrimSpace(e.Answer)})
	}

	topics := make([]Topic, 0, len(t.Topics))
	for _, tp := range t.Topics {
		topics = append(topics, Topic{Name: strings.TrimSpace(tp.Name), Body: strings.TrimSpace(tp.Body)})
	}

	return &Base{
		fallback: strings.TrimSpace(t.Fallback),
		entries:  entries,
		topics:   topics,
	}, nil
}

var (
	defaultOnce sync.Once
	defaultBase *Base
	errDefault  error
)

// Default returns the embedded tables.
func Default() (*Base, error) {
	defaultOnce.Do(func() {
		defaultBase, errDefault = Load(strings.NewReader(string(defaultTables)))
	})
	return defaultBase, errDefault
}

// Lookup returns the answer whose fragment is the longest substring of the
// message. Ties go to the entry listed first.
func (b *Base) Lookup(message string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(message))

	best := -1
	for i, e := range b.entries {
		if !strings.Contains(normalized, e.Match) {
			continue
		}
		if best < 0 || len(e.Match) > len(b.entries[best].Match) {
			best = i
		}
	}

	if best < 0 {
		return "", false
	}
	return b.entries[best].Answer, true
}

// Fallback is the generic answer for financial questions with no table entry.
func (b *Base) Fallback() string {
	return b.fallback
}

// Topics lists topic names in table order.
func (b *Base) Topics() []string {
	names := make([]string, len(b.topics))
	for i, t := range b.topics {
		names[i] = t.Name
	}
	return names
}

// Topic returns the markdown body for a topic, matched case-insensitively.
func (b *Base) Topic(name string) (string, bool) {
	for _, t := range b.topics {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t.Body, true
		}
	}
	return "", false
}
