package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient talks to a hosted recognition endpoint
// (GET {endpoint}/apps/{appID}?q=...) authenticated by subscription key.
type HTTPClient struct {
	http     *http.Client
	endpoint string
	appID    string
	key      string
}

func NewHTTPClient(httpClient *http.Client, endpoint, appID, key string) (*HTTPClient, error) {
	endpoint = strings.TrimSpace(strings.TrimRight(endpoint, "/"))
	if endpoint == "" {
		return nil, fmt.Errorf("recognizer: endpoint is required")
	}
	if strings.TrimSpace(appID) == "" {
		return nil, fmt.Errorf("recognizer: app id is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("recognizer: subscription key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		http:     httpClient,
		endpoint: endpoint,
		appID:    strings.TrimSpace(appID),
		key:      strings.TrimSpace(key),
	}, nil
}

type wireIntent struct {
	Intent string  `json:"intent"`
	Score  float64 `json:"score"`
}

type wireEntity struct {
	Entity string `json:"entity"`
	Type   string `json:"type"`
}

type wireResponse struct {
	Query    string       `json:"query"`
	Intents  []wireIntent `json:"intents"`
	Entities []wireEntity `json:"entities"`
}

func (c *HTTPClient) Recognize(ctx context.Context, text string) (*Result, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("recognizer: client is not initialized")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &Result{}, nil
	}
	u := fmt.Sprintf("%s/apps/%s?q=%s", c.endpoint, url.PathEscape(c.appID), url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognizer: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("recognizer: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("recognizer: http %d", resp.StatusCode)
	}
	var out wireResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("recognizer: decode response: %w", err)
	}

	result := &Result{Text: out.Query}
	for _, in := range out.Intents {
		result.Intents = append(result.Intents, IntentScore(in))
	}
	if len(out.Entities) > 0 {
		result.Entities = make(map[string][]string, len(out.Entities))
		for _, e := range out.Entities {
			result.Entities[e.Type] = append(result.Entities[e.Type], e.Entity)
		}
	}
	return result, nil
}
