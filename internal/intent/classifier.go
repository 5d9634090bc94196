package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/finmate/internal/conversation"
)

var selectionPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// Classifier routes messages through an ordered rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over the default table.
func NewClassifier(kb Knowledge) (*Classifier, error) {
	if kb == nil {
		return nil, fmt.Errorf("knowledge base is required")
	}
	return &Classifier{rules: DefaultRules(kb)}, nil
}

// NewClassifierWithRules builds a classifier over a custom table.
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify decides how to handle a message given the conversational state.
// It never mutates state; the caller applies the decision.
func (c *Classifier) Classify(message string, state conversation.Snapshot) Decision {
	message = strings.TrimSpace(message)

	if state.Mode != conversation.ModeIdle {
		if selectionPattern.MatchString(message) {
			index, err := strconv.Atoi(message)
			if err == nil && index <= state.Candidates {
				return Decision{Selection: &Selection{Index: index, Op: state.Op()}}
			}
		}
		return Decision{Route: c.Route(message), Abandoned: true}
	}

	return Decision{Route: c.Route(message)}
}

// Route runs the idle cascade. The first matching rule wins.
func (c *Classifier) Route(message string) Route {
	for _, rule := range c.rules {
		if rule.Match(message) {
			return rule.Route(message)
		}
	}
	return Route{Kind: BackendFallback}
}

// RuleName reports which rule would route the message, or "" for the fallback.
func (c *Classifier) RuleName(message string) string {
	message = strings.TrimSpace(message)
	for _, rule := range c.rules {
		if rule.Match(message) {
			return rule.Name
		}
	}
	return ""
}
