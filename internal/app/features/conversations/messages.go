// internal/app/features/conversations/messages.go
package conversations

import (
	"html/template"
	"strings"
	"unicode"

	"github.com/scribeworks/scribehub/internal/app/system/assistant"
	"github.com/scribeworks/scribehub/internal/app/system/htmlsanitize"
	"github.com/scribeworks/scribehub/internal/app/system/markdown"
)

// ReactionVM is one emoji reaction badge on a message.
type ReactionVM struct {
	Emoji string
	Count int
}

// MessageVM is the template data for a single rendered chat message.
type MessageVM struct {
	SID      string
	Author   string
	Initials string
	IsAgent  bool

	// HTML is sanitized before it reaches the template, so it is safe to
	// emit without further escaping.
	HTML template.HTML

	Reactions []ReactionVM

	// ShowAgentSuggestion marks the one message that gets the
	// "mention an agent" affordance: the most recent message, and only
	// when it is a user turn that mentions no agent.
	ShowAgentSuggestion bool
}

// BuildMessageList maps conversation turns to view models. viewerName
// labels user turns that carry no author of their own.
func BuildMessageList(msgs []assistant.AgentMessage, viewerName string) []MessageVM {
	out := make([]MessageVM, 0, len(msgs))
	for _, m := range msgs {
		if m.Type == "content_fragment" {
			continue
		}

		isAgent := m.Type == "agent_message"
		author := m.Author
		if author == "" {
			if isAgent {
				author = "Agent"
			} else {
				author = viewerName
			}
		}

		var body template.HTML
		if isAgent {
			// Agent replies arrive as markdown.
			body = markdown.RenderHTML(m.Content)
		} else {
			body = htmlsanitize.PrepareForDisplay(m.Content)
		}

		reactions := make([]ReactionVM, 0, len(m.Reactions))
		for _, re := range m.Reactions {
			if len(re.Users) == 0 {
				continue
			}
			reactions = append(reactions, ReactionVM{Emoji: re.Emoji, Count: len(re.Users)})
		}

		out = append(out, MessageVM{
			SID:       m.SID,
			Author:    author,
			Initials:  initials(author),
			IsAgent:   isAgent,
			HTML:      body,
			Reactions: reactions,
		})
	}

	if n := len(out); n > 0 {
		last := len(msgs) - 1
		for last >= 0 && msgs[last].Type == "content_fragment" {
			last--
		}
		if last >= 0 && msgs[last].Type == "user_message" && len(msgs[last].Mentions) == 0 {
			out[n-1].ShowAgentSuggestion = true
		}
	}

	return out
}

// initials derives up to two avatar letters from a display name.
func initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}

	first := []rune(fields[0])
	letters := []rune{unicode.ToUpper(first[0])}
	if len(fields) > 1 {
		lastField := []rune(fields[len(fields)-1])
		letters = append(letters, unicode.ToUpper(lastField[0]))
	}
	return string(letters)
}
