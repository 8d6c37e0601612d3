package conversations

import (
	"strings"
	"testing"

	"github.com/scribeworks/scribehub/internal/app/system/assistant"
)

func userMsg(sid, content string, mentions ...string) assistant.AgentMessage {
	m := assistant.AgentMessage{SID: sid, Type: "user_message", Content: content}
	for _, id := range mentions {
		m.Mentions = append(m.Mentions, assistant.Mention{ConfigurationID: id})
	}
	return m
}

func agentMsg(sid, content string) assistant.AgentMessage {
	return assistant.AgentMessage{
		SID: sid, Type: "agent_message", Status: "succeeded",
		Content: content, Author: "Summarizer",
	}
}

func TestBuildMessageList_SuggestionOnlyOnLastUnmentionedMessage(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", "hello", "summarizer"),
		agentMsg("m2", "hi"),
		userMsg("m3", "what next?"),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	if len(vms) != 3 {
		t.Fatalf("messages: got %d, want 3", len(vms))
	}
	for i, vm := range vms[:2] {
		if vm.ShowAgentSuggestion {
			t.Errorf("message %d: unexpected agent suggestion", i)
		}
	}
	if !vms[2].ShowAgentSuggestion {
		t.Error("expected agent suggestion on the most recent message")
	}
}

func TestBuildMessageList_NoSuggestionWhenLastMessageHasMention(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", "hello"),
		userMsg("m2", "summarize please", "summarizer"),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	for i, vm := range vms {
		if vm.ShowAgentSuggestion {
			t.Errorf("message %d: unexpected agent suggestion", i)
		}
	}
}

func TestBuildMessageList_NoSuggestionOnAgentMessage(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", "hello", "summarizer"),
		agentMsg("m2", "the summary"),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	for i, vm := range vms {
		if vm.ShowAgentSuggestion {
			t.Errorf("message %d: unexpected agent suggestion", i)
		}
	}
}

func TestBuildMessageList_SkipsContentFragments(t *testing.T) {
	msgs := []assistant.AgentMessage{
		{SID: "f1", Type: "content_fragment", Content: "transcript text"},
		userMsg("m1", "hello"),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	if len(vms) != 1 {
		t.Fatalf("messages: got %d, want 1", len(vms))
	}
	if vms[0].SID != "m1" {
		t.Errorf("sid: got %q, want %q", vms[0].SID, "m1")
	}
	if !vms[0].ShowAgentSuggestion {
		t.Error("expected agent suggestion; the fragment is not a message")
	}
}

func TestBuildMessageList_SanitizesUserContent(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", `<script>alert("x")</script>hello <b>there</b>`),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	body := string(vms[0].HTML)
	if strings.Contains(body, "<script>") {
		t.Errorf("script tag survived sanitization: %q", body)
	}
	if !strings.Contains(body, "hello") {
		t.Errorf("content lost in sanitization: %q", body)
	}
}

func TestBuildMessageList_RendersAgentMarkdown(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", "summarize", "summarizer"),
		agentMsg("m2", "# Summary\n\nIt went **well**."),
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	body := string(vms[1].HTML)
	if !strings.Contains(body, "<h1") {
		t.Errorf("expected rendered heading, got %q", body)
	}
	if !strings.Contains(body, "<strong>well</strong>") {
		t.Errorf("expected rendered emphasis, got %q", body)
	}
}

func TestBuildMessageList_AuthorFallbacks(t *testing.T) {
	msgs := []assistant.AgentMessage{
		userMsg("m1", "hello"),
		{SID: "m2", Type: "agent_message", Status: "succeeded", Content: "hi"},
	}

	vms := BuildMessageList(msgs, "Ada Lovelace")
	if vms[0].Author != "Ada Lovelace" {
		t.Errorf("user author: got %q, want %q", vms[0].Author, "Ada Lovelace")
	}
	if vms[1].Author != "Agent" {
		t.Errorf("agent author: got %q, want %q", vms[1].Author, "Agent")
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"ada", "A"},
		{"Jean-Luc Marie Picard", "JP"},
		{"", "?"},
		{"  ", "?"},
	}
	for _, tc := range cases {
		if got := initials(tc.name); got != tc.want {
			t.Errorf("initials(%q): got %q, want %q", tc.name, got, tc.want)
		}
	}
}
