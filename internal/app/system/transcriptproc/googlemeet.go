// internal/app/system/transcriptproc/googlemeet.go
package transcriptproc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/scribeworks/scribehub/internal/domain/models"
)

const driveDefaultBaseURL = "https://www.googleapis.com/drive/v3"

// googleMeetProvider reads Meet transcript documents from the user's
// Google Drive. The stored refresh token is redeemed through the app's
// OAuth client; oauth2 handles access-token refresh transparently.
type googleMeetProvider struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

func newGoogleMeetProvider(oauth GoogleOAuth, refreshToken string, logger *zap.Logger) *googleMeetProvider {
	conf := &oauth2.Config{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/drive.readonly"},
	}
	token := &oauth2.Token{RefreshToken: refreshToken}

	return &googleMeetProvider{
		baseURL: driveDefaultBaseURL,
		httpc:   oauth2.NewClient(context.Background(), conf.TokenSource(context.Background(), token)),
		log:     logger,
	}
}

func (p *googleMeetProvider) Name() string { return models.ProviderGoogleMeet }

const meetTranscriptQuery = `name contains 'Transcript' and mimeType = 'application/vnd.google-apps.document' and trashed = false`

type driveFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"createdTime"`
}

type driveFileList struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
}

func (p *googleMeetProvider) ListNewTranscripts(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("q", meetTranscriptQuery)
		q.Set("fields", "nextPageToken, files(id, name, createdTime)")
		q.Set("orderBy", "createdTime desc")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page driveFileList
		if err := p.getJSON(ctx, p.baseURL+"/files?"+q.Encode(), &page); err != nil {
			return nil, fmt.Errorf("google_meet: list files: %w", err)
		}

		for _, f := range page.Files {
			files = append(files, FileInfo{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedTime})
		}

		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

func (p *googleMeetProvider) FetchTranscript(ctx context.Context, fileID string) (Transcript, error) {
	var meta driveFile
	metaURL := fmt.Sprintf("%s/files/%s?fields=id,name,createdTime", p.baseURL, url.PathEscape(fileID))
	if err := p.getJSON(ctx, metaURL, &meta); err != nil {
		return Transcript{}, fmt.Errorf("google_meet: file metadata %s: %w", fileID, err)
	}

	exportURL := fmt.Sprintf("%s/files/%s/export?mimeType=%s",
		p.baseURL, url.PathEscape(fileID), url.QueryEscape("text/plain"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return Transcript{}, fmt.Errorf("google_meet: build export request: %w", err)
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("google_meet: export %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Transcript{}, fmt.Errorf("google_meet: export %s: status %d: %s", fileID, resp.StatusCode, detail)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, fmt.Errorf("google_meet: read export %s: %w", fileID, err)
	}

	return Transcript{Title: meta.Name, Content: string(content)}, nil
}

func (p *googleMeetProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
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
	return json.NewDecoder(resp.Body).Decode(out)
}
