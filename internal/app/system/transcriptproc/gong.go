// internal/app/system/transcriptproc/gong.go
package transcriptproc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/domain/models"
)

const gongDefaultBaseURL = "https://api.gong.io"

// gongProvider reads calls and their transcripts from the Gong REST API.
// Listing pages through the cursor the API returns until it runs dry.
type gongProvider struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *zap.Logger
}

func newGongProvider(apiKey string, logger *zap.Logger) *gongProvider {
	return &gongProvider{
		baseURL: gongDefaultBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		log:     logger,
	}
}

func (p *gongProvider) Name() string { return models.ProviderGong }

type gongCall struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Started time.Time `json:"started"`
}

type gongCallsResponse struct {
	Calls   []gongCall `json:"calls"`
	Records struct {
		Cursor string `json:"cursor"`
	} `json:"records"`
}

func (p *gongProvider) ListNewTranscripts(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	cursor := ""

	for {
		endpoint := p.baseURL + "/v2/calls"
		if cursor != "" {
			endpoint += "?cursor=" + url.QueryEscape(cursor)
		}

		var page gongCallsResponse
		if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("gong: list calls: %w", err)
		}

		for _, call := range page.Calls {
			files = append(files, FileInfo{
				ID:        call.ID,
				Name:      call.Title,
				CreatedAt: call.Started,
			})
		}

		if page.Records.Cursor == "" {
			return files, nil
		}
		cursor = page.Records.Cursor
	}
}

type gongTranscriptRequest struct {
	Filter struct {
		CallIDs []string `json:"callIds"`
	} `json:"filter"`
}

type gongTranscriptResponse struct {
	CallTranscripts []struct {
		CallID     string `json:"callId"`
		Transcript []struct {
			Sentences []struct {
				Text string `json:"text"`
			} `json:"sentences"`
		} `json:"transcript"`
	} `json:"callTranscripts"`
}

func (p *gongProvider) FetchTranscript(ctx context.Context, fileID string) (Transcript, error) {
	var req gongTranscriptRequest
	req.Filter.CallIDs = []string{fileID}

	var resp gongTranscriptResponse
	if err := p.doJSON(ctx, http.MethodPost, p.baseURL+"/v2/calls/transcript", req, &resp); err != nil {
		return Transcript{}, fmt.Errorf("gong: fetch transcript %s: %w", fileID, err)
	}
	if len(resp.CallTranscripts) == 0 {
		return Transcript{}, fmt.Errorf("gong: no transcript for call %s", fileID)
	}

	var b strings.Builder
	for _, monologue := range resp.CallTranscripts[0].Transcript {
		for _, sentence := range monologue.Sentences {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(sentence.Text)
		}
	}

	return Transcript{Title: "Gong call " + fileID, Content: b.String()}, nil
}

func (p *gongProvider) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
