// internal/app/system/docsync/client.go
package docsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scribeworks/scribehub/internal/app/system/syncmetrics"
	"go.uber.org/zap"
)

// Default retry policy for document upserts.
const (
	DefaultRetries   = 10
	DefaultDelayBase = 500 * time.Millisecond
)

var ErrInvalidRetries = errors.New("retries must be at least 1")

// Config identifies the target data source in the content index and
// carries the bearer token used to authenticate against it.
type Config struct {
	BaseURL        string
	APIKey         string
	WorkspaceID    string
	DataSourceName string
}

// UpsertRequest is one document to push into the index.
// Build it with NewUpsertRequest to get the default retry policy.
type UpsertRequest struct {
	DocumentID string
	Text       string
	SourceURL  string
	Timestamp  int64 // unix millis; zero means unset
	Tags       []string

	// Retry policy. Retries counts total attempts; a value below 1 is
	// rejected before any network call.
	Retries   int
	DelayBase time.Duration
}

// NewUpsertRequest builds an upsert request with the default retry policy.
func NewUpsertRequest(documentID, text string) UpsertRequest {
	return UpsertRequest{
		DocumentID: documentID,
		Text:       text,
		Retries:    DefaultRetries,
		DelayBase:  DefaultDelayBase,
	}
}

// Client wraps the content-index document API. Upserts retry with
// quadratic backoff; deletes are single-shot.
type Client struct {
	httpc   *http.Client
	log     *zap.Logger
	metrics *syncmetrics.Registry

	// sleep is swapped out in tests so backoff is observable without
	// real waiting.
	sleep func(time.Duration)
}

func NewClient(logger *zap.Logger, metrics *syncmetrics.Registry) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logger,
		metrics: metrics,
		sleep:   time.Sleep,
	}
}

type upsertBody struct {
	Text      string   `json:"text"`
	SourceURL string   `json:"source_url,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

func (c *Client) documentURL(cfg Config, documentID string) string {
	return fmt.Sprintf("%s/api/v1/w/%s/data_sources/%s/documents/%s",
		cfg.BaseURL,
		url.PathEscape(cfg.WorkspaceID),
		url.PathEscape(cfg.DataSourceName),
		url.PathEscape(documentID))
}

// UpsertDocument posts the document to the index, retrying failed attempts
// with delays of DelayBase*(i+1)^2 between attempt i and i+1. When every
// attempt fails the returned error joins all attempt errors.
func (c *Client) UpsertDocument(ctx context.Context, cfg Config, req UpsertRequest) error {
	if req.Retries < 1 {
		return ErrInvalidRetries
	}
	delayBase := req.DelayBase
	if delayBase <= 0 {
		delayBase = DefaultDelayBase
	}

	payload, err := json.Marshal(upsertBody{
		Text:      req.Text,
		SourceURL: req.SourceURL,
		Timestamp: req.Timestamp,
		Tags:      req.Tags,
	})
	if err != nil {
		return fmt.Errorf("marshal upsert payload: %w", err)
	}

	endpoint := c.documentURL(cfg, req.DocumentID)
	attemptErrs := make([]error, 0, req.Retries)

	for i := 0; i < req.Retries; i++ {
		if i > 0 {
			c.sleep(delayBase * time.Duration(i*i))
		}

		err := c.doUpsert(ctx, cfg, endpoint, payload)
		if err == nil {
			c.metrics.IncSuccess(cfg.WorkspaceID, cfg.DataSourceName)
			c.log.Info("document upserted",
				zap.String("workspace_id", cfg.WorkspaceID),
				zap.String("data_source", cfg.DataSourceName),
				zap.String("document_id", req.DocumentID),
				zap.Int("attempt", i+1))
			return nil
		}

		attemptErrs = append(attemptErrs, fmt.Errorf("attempt %d: %w", i+1, err))
		c.log.Warn("document upsert attempt failed",
			zap.String("workspace_id", cfg.WorkspaceID),
			zap.String("data_source", cfg.DataSourceName),
			zap.String("document_id", req.DocumentID),
			zap.Int("attempt", i+1),
			zap.Error(err))
	}

	c.metrics.IncError(cfg.WorkspaceID, cfg.DataSourceName)
	return fmt.Errorf("upsert document %q: all %d attempts failed: %w",
		req.DocumentID, req.Retries, errors.Join(attemptErrs...))
}

func (c *Client) doUpsert(ctx context.Context, cfg Config, endpoint string, payload []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("index returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// DeleteDocument removes the document from the index. A delete is not
// retried; failures surface directly.
func (c *Client) DeleteDocument(ctx context.Context, cfg Config, documentID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.documentURL(cfg, documentID), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		c.metrics.IncError(cfg.WorkspaceID, cfg.DataSourceName)
		return fmt.Errorf("delete document %q: %w", documentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncError(cfg.WorkspaceID, cfg.DataSourceName)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("delete document %q: index returned status %d: %s", documentID, resp.StatusCode, body)
	}

	c.metrics.IncSuccess(cfg.WorkspaceID, cfg.DataSourceName)
	c.log.Info("document deleted",
		zap.String("workspace_id", cfg.WorkspaceID),
		zap.String("data_source", cfg.DataSourceName),
		zap.String("document_id", documentID))
	return nil
}
