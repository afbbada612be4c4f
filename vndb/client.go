package vndb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vnclub/domain/entities"

	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

// Client resolves visual novel metadata from the VNDB kana API.
// It implements the VNCatalog interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a VNDB client against the given base URL
// (e.g. https://api.vndb.org/kana)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type vnQuery struct {
	Filters []string `json:"filters"`
	Fields  string   `json:"fields"`
}

type vnResponse struct {
	Results []vnResult `json:"results"`
}

type vnResult struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Titles        []vnTitle `json:"titles"`
	LengthMinutes int64     `json:"length_minutes"`
}

type vnTitle struct {
	Lang  string `json:"lang"`
	Title string `json:"title"`
}

// Lookup fetches a visual novel by its VNDB ID. Returns nil when the
// ID is unknown to the catalog.
func (c *Client) Lookup(ctx context.Context, vndbID string) (*entities.VNInfo, error) {
	query := vnQuery{
		Filters: []string{"id", "=", vndbID},
		Fields:  "title, titles.lang, titles.title, length_minutes",
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal VNDB query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vn", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create VNDB request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("VNDB request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.WithFields(log.Fields{
			"status":  resp.StatusCode,
			"vndb_id": vndbID,
			"body":    string(data),
		}).Warn("VNDB returned non-OK status")
		return nil, fmt.Errorf("VNDB returned status %d", resp.StatusCode)
	}

	var parsed vnResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode VNDB response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	result := parsed.Results[0]
	info := &entities.VNInfo{
		ID:            result.ID,
		Title:         result.Title,
		LengthMinutes: result.LengthMinutes,
	}
	for _, title := range result.Titles {
		if title.Lang == "en" {
			info.TitleEN = title.Title
			break
		}
	}

	return info, nil
}
