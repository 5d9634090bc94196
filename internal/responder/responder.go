// Package responder produces the replies the assistant can give without
// contacting the server.
package responder

import (
	"fmt"

	"github.com/Veraticus/finmate/internal/intent"
	"github.com/Veraticus/finmate/internal/knowledge"
)

// Fixed replies.
const (
	WelcomeText   = "Hi! I'm FinMate, your finance assistant. How can I help with your expenses today?"
	GreetingText  = "Hello! I'm your finance assistant. I can help you add expenses, view spending, or give budget tips. What would you like to do?"
	IdentityText  = "I'm FinMate, your AI finance assistant. I help you track expenses, analyze spending, and provide financial advice for your personal budget management."
	GratitudeText = "You're welcome! I'm here anytime you need assistance with your finances. Is there anything else I can help with?"
	TopicsText    = "I can talk about various financial topics. What interests you?"
	NoTopicText   = "I don't have specific information about that topic yet, but I'd be happy to discuss other financial subjects."

	HelpText = "I can help you with the following:\n" +
		"• Add an expense (just say 'add expense')\n" +
		"• View my expenses\n" +
		"• Analyze my spending\n" +
		"• Get budget tips\n" +
		"What would you like to do?"
)

// Suggestion is a canned follow-up offered alongside the welcome message.
type Suggestion struct {
	Text   string
	Action string
}

// DefaultSuggestions are the quick actions offered when the chat opens.
var DefaultSuggestions = []Suggestion{
	{Text: "Add an expense", Action: "add_expense"},
	{Text: "View my expenses", Action: "view_expenses"},
	{Text: "Analyze my spending", Action: "analyze_expenses"},
	{Text: "Get budget tips", Action: "budget_tips"},
}

// Response is a locally produced reply.
type Response struct {
	Text string
	// Topics lists topic names the user can pick next.
	Topics   []string
	Markdown bool
}

// Responder answers local routes from fixed text and the knowledge tables.
type Responder struct {
	kb *knowledge.Base
}

// New creates a responder over the given knowledge base.
func New(kb *knowledge.Base) *Responder {
	return &Responder{kb: kb}
}

// Respond answers a local route. It returns false for routes that need the server.
func (r *Responder) Respond(route intent.Route) (Response, bool) {
	switch route.Kind {
	case intent.LocalGreeting:
		return Response{Text: GreetingText}, true
	case intent.LocalHelp:
		return Response{Text: HelpText}, true
	case intent.LocalIdentity:
		return Response{Text: IdentityText}, true
	case intent.LocalGratitude:
		return Response{Text: GratitudeText}, true
	case intent.LocalKnowledge:
		answer := route.Answer
		if answer == "" {
			answer = r.kb.Fallback()
		}
		return Response{Text: answer}, true
	case intent.TopicBrowse:
		return Response{Text: TopicsText, Topics: r.kb.Topics()}, true
	default:
		return Response{}, false
	}
}

// Topic answers a topic pick.
func (r *Responder) Topic(name string) Response {
	body, ok := r.kb.Topic(name)
	if !ok {
		return Response{Text: NoTopicText}
	}
	return Response{Text: body, Markdown: true}
}

// Welcome is the first message of every session.
func (r *Responder) Welcome() Response {
	return Response{Text: WelcomeText}
}

// Describe summarises a response for debug logs.
func (r Response) Describe() string {
	return fmt.Sprintf("%d chars, %d topics, markdown=%t", len(r.Text), len(r.Topics), r.Markdown)
}
