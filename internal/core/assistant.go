package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookify/internal/core/model"
)

// Failure kinds the assistant surfaces to the caller; anything else degrades
// to a fallback reply instead of propagating.
var (
	ErrInvalidCredential = errors.New("invalid_credential")
	ErrRateLimited       = errors.New("rate_limited")
	ErrContentBlocked    = errors.New("content_blocked")
)

// CompletionClient is the external text-completion service.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (text, modelName string, err error)
	Configured() bool
}

type AssistantService struct {
	Client CompletionClient
	log    *slog.Logger
}

func NewAssistantService(client CompletionClient, logger *slog.Logger) *AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{Client: client, log: logger}
}

const systemPreamble = `You are an AI reading companion for Bookify AI Library, a modern online bookstore. You help users with:

1. Book recommendations based on preferences and reading history
2. Literary analysis including themes, characters, and writing techniques
3. Study assistance like summaries, quiz questions, and explanations
4. Book discussions and interpretations
5. Finding quotes and passages
6. Comparing books and authors

You should be helpful, knowledgeable, and encouraging about reading. Keep responses conversational and engaging. If discussing a specific book, reference details accurately.`

const historyWindow = 6

// Respond answers one chat message. When no credential is configured the
// canned fallback path is used directly; when the service fails with one of
// the mapped kinds (credential, quota, safety) the error propagates so the
// transport can report it; any other failure degrades to the fallback with
// the cause logged.
func (s *AssistantService) Respond(ctx context.Context, req model.ChatRequest) (model.ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return model.ChatReply{}, ErrValidation
	}

	if s.Client == nil || !s.Client.Configured() {
		return model.ChatReply{Message: s.fallback(req), Fallback: true}, nil
	}

	text, modelName, err := s.Client.Complete(ctx, s.buildPrompt(req))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrRateLimited), errors.Is(err, ErrContentBlocked):
			s.log.Warn("assistant request rejected", "err", err)
			return model.ChatReply{}, err
		default:
			s.log.Error("assistant upstream failed, serving fallback", "err", err)
			return model.ChatReply{Message: s.fallback(req), Fallback: true}, nil
		}
	}
	if text == "" {
		text = "I apologize, but I was unable to generate a response. Please try again."
	}
	return model.ChatReply{Message: text, Model: modelName}, nil
}

func (s *AssistantService) buildPrompt(req model.ChatRequest) string {
	var b strings.Builder
	b.WriteString(systemPreamble)

	if req.BookContext != nil {
		fmt.Fprintf(&b, "\n\nCurrent book context: The user is currently reading or discussing %q by %s.", req.BookContext.Title, req.BookContext.Author)
	}
	if req.SelectedText != "" {
		fmt.Fprintf(&b, "\n\nSelected text from the book: %q", req.SelectedText)
	}

	if len(req.ConversationHistory) > 0 {
		b.WriteString("\n\nConversation history:\n")
		history := req.ConversationHistory
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		for _, turn := range history {
			role := "Assistant"
			if turn.Type == "user" {
				role = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\n\nUser: %s\nAssistant:", req.Message)
	return b.String()
}

// fallbackRule pairs a keyword predicate with a response builder. Rules are
// evaluated top-down; the first match wins.
type fallbackRule struct {
	keywords []string
	respond  func(req model.ChatRequest, msg string) string
}

func (r fallbackRule) matches(msg string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

var fallbackRules = []fallbackRule{
	{keywords: []string{"recommend", "suggest"}, respond: recommendReply},
	{keywords: []string{"analyze", "analysis", "theme"}, respond: analysisReply},
	{keywords: []string{"summary", "summarize"}, respond: summaryReply},
	{keywords: []string{"study", "quiz", "test"}, respond: fixedReply(
		"Study tip: Create connections between characters, themes, and plot events. Try making character maps, timeline of events, and theme charts. For quizzes, focus on: character motivations, major plot points, themes, important quotes, and author's style. What subject are you studying?")},
	{keywords: []string{"character"}, respond: fixedReply(
		"Character analysis is key to understanding literature! Consider: What motivates this character? How do they change throughout the story? What do their actions reveal about their personality? How do they relate to other characters and themes? Which character interests you most?")},
	{keywords: []string{"quote", "passage"}, respond: fixedReply(
		"Important quotes often reveal character insights, themes, or turning points in the story. When analyzing quotes, consider: Who said it? What's the context? What does it reveal about the character or theme? How does it connect to the larger story?")},
	{keywords: []string{"hello", "hi", "hey"}, respond: fixedReply(
		"Hello! I'm your AI reading companion. I'm here to help with book recommendations, literary analysis, study questions, character discussions, and more. What would you like to explore today?")},
	{keywords: []string{"thank"}, respond: fixedReply(
		"You're very welcome! I'm always here to help with your reading journey. Feel free to ask about any book, character, theme, or literary concept. Happy reading!")},
}

const fallbackDefault = "I'm here to help with your reading journey! I can assist with book recommendations, character analysis, theme exploration, study questions, plot summaries, and literary discussions. What would you like to explore? You can ask about specific books, request recommendations by genre, or dive into literary analysis!"

// fallback selects a canned reply by scanning the lowercased message for
// domain keywords in fixed priority order.
func (s *AssistantService) fallback(req model.ChatRequest) string {
	msg := strings.ToLower(req.Message)
	for _, rule := range fallbackRules {
		if rule.matches(msg) {
			return rule.respond(req, msg)
		}
	}
	return fallbackDefault
}

func fixedReply(text string) func(model.ChatRequest, string) string {
	return func(model.ChatRequest, string) string { return text }
}

func recommendReply(_ model.ChatRequest, msg string) string {
	switch {
	case strings.Contains(msg, "fantasy"):
		return "For fantasy lovers, I'd recommend starting with 'The Lord of the Rings' by J.R.R. Tolkien or 'Harry Potter' series by J.K. Rowling. Both offer rich world-building and memorable characters. 'Dune' by Frank Herbert is also excellent if you enjoy science fantasy!"
	case strings.Contains(msg, "classic"):
		return "Some timeless classics I'd suggest include 'To Kill a Mockingbird' by Harper Lee for its powerful social themes, 'Pride and Prejudice' by Jane Austen for brilliant character development, or '1984' by George Orwell for thought-provoking dystopian fiction."
	case strings.Contains(msg, "science fiction"), strings.Contains(msg, "sci-fi"):
		return "Great sci-fi picks include '1984' by George Orwell, 'Dune' by Frank Herbert, and 'The Handmaid's Tale' by Margaret Atwood. Each offers unique perspectives on technology, society, and human nature."
	default:
		return "I'd love to help with recommendations! Based on our catalog, popular choices include 'To Kill a Mockingbird', 'Pride and Prejudice', 'Dune', and 'Harry Potter'. What genre interests you most?"
	}
}

func analysisReply(req model.ChatRequest, _ string) string {
	if req.BookContext != nil {
		return fmt.Sprintf("Great question about %q! Literary analysis involves examining themes, character development, symbolism, and the author's writing techniques. What specific aspect would you like to explore? I can help you think about character motivations, thematic elements, or literary devices used in the text.", req.BookContext.Title)
	}
	return "Literary analysis is fascinating! When analyzing a book, consider themes (central messages), character development (how characters change), symbolism (deeper meanings), plot structure, and the author's writing style. Which book are you currently reading?"
}

func summaryReply(req model.ChatRequest, _ string) string {
	if req.SelectedText != "" {
		return "When summarizing text, focus on the main ideas, key events, and important character developments. Look for the central conflict, how it develops, and its resolution. What specific aspects of this passage would you like me to help you understand better?"
	}
	return "I can help you create effective summaries! Good summaries include main plot points, key character developments, central themes, and important outcomes. Which book or chapter would you like to summarize?"
}
