// Package kb is the client for the hosted knowledge-base service that
// answers free-form questions from a curated QnA set.
package kb

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
)

type Answer struct {
	Text      string   `json:"answer"`
	Score     float64  `json:"score"`
	Questions []string `json:"questions,omitempty"`
}

type Client interface {
	GetAnswers(ctx context.Context, question string) ([]Answer, error)
}

// HTTPClient posts questions to
// {host}/knowledgebases/{kbID}/generateAnswer with EndpointKey auth.
type HTTPClient struct {
	http        *http.Client
	host        string
	kbID        string
	endpointKey string
}

func NewHTTPClient(httpClient *http.Client, host, kbID, endpointKey string) (*HTTPClient, error) {
	host = strings.TrimSpace(strings.TrimRight(host, "/"))
	if host == "" {
		return nil, fmt.Errorf("kb: host is required")
	}
	if strings.TrimSpace(kbID) == "" {
		return nil, fmt.Errorf("kb: knowledge base id is required")
	}
	if strings.TrimSpace(endpointKey) == "" {
		return nil, fmt.Errorf("kb: endpoint key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		http:        httpClient,
		host:        host,
		kbID:        strings.TrimSpace(kbID),
		endpointKey: strings.TrimSpace(endpointKey),
	}, nil
}

type wireAnswer struct {
	Answer    string   `json:"answer"`
	Score     float64  `json:"score"`
	Questions []string `json:"questions"`
}

type wireResponse struct {
	Answers []wireAnswer `json:"answers"`
}

func (c *HTTPClient) GetAnswers(ctx context.Context, question string) ([]Answer, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("kb: client is not initialized")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("kb: question is required")
	}
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("kb: marshal question: %w", err)
	}
	u := fmt.Sprintf("%s/knowledgebases/%s/generateAnswer", c.host, url.PathEscape(c.kbID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "EndpointKey "+c.endpointKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kb: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("kb: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("kb: http %d", resp.StatusCode)
	}
	var out wireResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("kb: decode response: %w", err)
	}

	answers := make([]Answer, 0, len(out.Answers))
	for _, a := range out.Answers {
		// A zero score is the service's "no good match" sentinel.
		if a.Score <= 0 {
			continue
		}
		answers = append(answers, Answer{
			Text:      StripHTML(a.Answer),
			Score:     a.Score,
			Questions: a.Questions,
		})
	}
	return answers, nil
}
