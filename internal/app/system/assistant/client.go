// internal/app/system/assistant/client.go
//
// Package assistant is the HTTP client for the conversation API of the
// assistant platform. The transcript pipeline uses it to open a
// conversation seeded with a transcript and wait for the agent's
// summary.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrNoAgentAnswer is returned by AwaitAgentAnswer when the deadline
// passes without a completed agent message.
var ErrNoAgentAnswer = errors.New("no agent answer before deadline")

// Config identifies the target workspace on the assistant platform.
type Config struct {
	BaseURL     string
	APIKey      string
	WorkspaceID string
}

// Client talks to the assistant conversation API.
type Client struct {
	cfg   Config
	httpc *http.Client
	log   *zap.Logger

	// pollInterval between AwaitAgentAnswer polls; overridable in tests.
	pollInterval time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:          cfg,
		httpc:        &http.Client{Timeout: 60 * time.Second},
		log:          logger,
		pollInterval: 2 * time.Second,
	}
}

// ContentFragment is a document attached to a conversation before the
// first message, giving the agent context to work from.
type ContentFragment struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// Message is one user turn. Mentions route the message to agents.
type Message struct {
	Content  string    `json:"content"`
	Mentions []Mention `json:"mentions"`
}

type Mention struct {
	ConfigurationID string `json:"configuration_id"`
}

// AgentMessage is one turn in a conversation. Type tells user and agent
// turns apart; Status is only meaningful for agent turns.
type AgentMessage struct {
	SID       string     `json:"sid"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Content   string     `json:"content"`
	Author    string     `json:"author,omitempty"`
	Mentions  []Mention  `json:"mentions,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

// Reaction is an emoji reaction with the users who placed it.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users,omitempty"`
}

// Conversation is the API's view of a conversation with its messages.
type Conversation struct {
	SID      string         `json:"sid"`
	Title    string         `json:"title"`
	Messages []AgentMessage `json:"content"`
}

type createConversationRequest struct {
	Title           string           `json:"title"`
	Visibility      string           `json:"visibility"`
	ContentFragment *ContentFragment `json:"content_fragment,omitempty"`
	Message         *Message         `json:"message,omitempty"`
}

type conversationEnvelope struct {
	Conversation Conversation `json:"conversation"`
}

func (c *Client) conversationsURL() string {
	return fmt.Sprintf("%s/api/v1/w/%s/assistant/conversations", c.cfg.BaseURL, c.cfg.WorkspaceID)
}

// CreateConversation opens a conversation titled after the transcript,
// attaches the transcript text as a content fragment, and posts the
// first user message mentioning the configured agent.
func (c *Client) CreateConversation(ctx context.Context, title string, fragment ContentFragment, message Message) (Conversation, error) {
	body := createConversationRequest{
		Title:           title,
		Visibility:      "unlisted",
		ContentFragment: &fragment,
		Message:         &message,
	}

	var env conversationEnvelope
	if err := c.doJSON(ctx, http.MethodPost, c.conversationsURL(), body, &env); err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	c.log.Info("conversation created",
		zap.String("workspace_id", c.cfg.WorkspaceID),
		zap.String("conversation_sid", env.Conversation.SID),
		zap.String("title", title))
	return env.Conversation, nil
}

// GetConversation fetches a conversation with its current messages.
func (c *Client) GetConversation(ctx context.Context, sid string) (Conversation, error) {
	var env conversationEnvelope
	url := c.conversationsURL() + "/" + sid
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &env); err != nil {
		return Conversation{}, fmt.Errorf("get conversation %s: %w", sid, err)
	}
	return env.Conversation, nil
}

// AwaitAgentAnswer polls the conversation until an agent message
// completes or the deadline passes. It returns the agent's content.
func (c *Client) AwaitAgentAnswer(ctx context.Context, sid string, deadline time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		conv, err := c.GetConversation(ctx, sid)
		if err == nil {
			for _, m := range conv.Messages {
				if m.Type != "agent_message" {
					continue
				}
				switch m.Status {
				case "succeeded":
					return m.Content, nil
				case "failed":
					return "", fmt.Errorf("agent message %s failed", m.SID)
				}
			}
		} else if !errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("poll conversation failed",
				zap.String("conversation_sid", sid),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return "", ErrNoAgentAnswer
		case <-ticker.C:
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("assistant api returned status %d: %s", resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
