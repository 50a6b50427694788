package kb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<b>bold</b> answer", "bold answer"},
		{`See <a href="https://docs">the docs</a>.`, "See the docs."},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHTTPClientGetAnswers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Path; got != "/knowledgebases/kb-1/generateAnswer" {
			t.Errorf("path = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "EndpointKey ep-key" {
			t.Errorf("authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil || payload["question"] != "What is the v4 SDK?" {
			t.Errorf("payload = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"answers": [
				{"answer": "<b>The v4 SDK</b> is the latest version.", "score": 82.5, "questions": ["What is the v4 SDK?"]},
				{"answer": "No good match found in KB.", "score": 0}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.Client(), srv.URL, "kb-1", "ep-key")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	answers, err := client.GetAnswers(context.Background(), "What is the v4 SDK?")
	if err != nil {
		t.Fatalf("GetAnswers() error = %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("GetAnswers() = %d answers, want the zero-score one dropped", len(answers))
	}
	if answers[0].Text != "The v4 SDK is the latest version." {
		t.Fatalf("answer text = %q, want markup stripped", answers[0].Text)
	}
	if answers[0].Score != 82.5 {
		t.Fatalf("answer score = %v", answers[0].Score)
	}
}

func TestHTTPClientGetAnswersRequiresQuestion(t *testing.T) {
	t.Parallel()

	client, err := NewHTTPClient(nil, "http://example.invalid", "kb-1", "ep-key")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if _, err := client.GetAnswers(context.Background(), "  "); err == nil {
		t.Fatalf("GetAnswers() accepted an empty question")
	}
}

func TestHTTPClientGetAnswersServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.Client(), srv.URL, "kb-1", "ep-key")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if _, err := client.GetAnswers(context.Background(), "hello"); err == nil {
		t.Fatalf("GetAnswers() error = nil, want http failure")
	}
}
