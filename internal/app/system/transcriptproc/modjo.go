// internal/app/system/transcriptproc/modjo.go
package transcriptproc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/domain/models"
)

const modjoDefaultBaseURL = "https://api.modjo.ai"

// modjoProvider reads calls from the Modjo export API using an API key
// sent in the X-API-KEY header.
type modjoProvider struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *zap.Logger
}

func newModjoProvider(apiKey string, logger *zap.Logger) *modjoProvider {
	return &modjoProvider{
		baseURL: modjoDefaultBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		log:     logger,
	}
}

func (p *modjoProvider) Name() string { return models.ProviderModjo }

type modjoExportRequest struct {
	Pagination struct {
		Page    int `json:"page"`
		PerPage int `json:"perPage"`
	} `json:"pagination"`
}

type modjoCall struct {
	ID        int64     `json:"callId"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
}

type modjoExportResponse struct {
	Values     []modjoCall `json:"values"`
	Pagination struct {
		LastPage int `json:"lastPage"`
	} `json:"pagination"`
}

func (p *modjoProvider) ListNewTranscripts(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	for page := 1; ; page++ {
		var req modjoExportRequest
		req.Pagination.Page = page
		req.Pagination.PerPage = 50

		var resp modjoExportResponse
		if err := p.doJSON(ctx, http.MethodPost, p.baseURL+"/v1/calls/exports", req, &resp); err != nil {
			return nil, fmt.Errorf("modjo: list calls: %w", err)
		}

		for _, call := range resp.Values {
			files = append(files, FileInfo{
				ID:        fmt.Sprintf("%d", call.ID),
				Name:      call.Title,
				CreatedAt: call.StartDate,
			})
		}

		if page >= resp.Pagination.LastPage || len(resp.Values) == 0 {
			return files, nil
		}
	}
}

type modjoTranscriptResponse struct {
	Title      string `json:"title"`
	Transcript []struct {
		Speaker string `json:"speaker"`
		Content string `json:"content"`
	} `json:"transcript"`
}

func (p *modjoProvider) FetchTranscript(ctx context.Context, fileID string) (Transcript, error) {
	var resp modjoTranscriptResponse
	endpoint := p.baseURL + "/v1/calls/" + fileID + "/transcript"
	if err := p.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return Transcript{}, fmt.Errorf("modjo: fetch transcript %s: %w", fileID, err)
	}

	var b strings.Builder
	for _, block := range resp.Transcript {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if block.Speaker != "" {
			b.WriteString(block.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(block.Content)
	}

	title := resp.Title
	if title == "" {
		title = "Modjo call " + fileID
	}
	return Transcript{Title: title, Content: b.String()}, nil
}

func (p *modjoProvider) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
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
	req.Header.Set("X-API-KEY", p.apiKey)
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
