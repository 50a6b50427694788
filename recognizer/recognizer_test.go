package recognizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTopIntentNilResult(t *testing.T) {
	t.Parallel()

	var r *Result
	intent, score := r.TopIntent()
	if intent != NoneIntent || score != 0 {
		t.Fatalf("TopIntent() = %q %v, want %q 0", intent, score, NoneIntent)
	}
}

func TestTopIntentEmptyResult(t *testing.T) {
	t.Parallel()

	intent, score := (&Result{}).TopIntent()
	if intent != NoneIntent || score != 0 {
		t.Fatalf("TopIntent() = %q %v, want %q 0", intent, score, NoneIntent)
	}
}

func TestTopIntentPicksHighestScore(t *testing.T) {
	t.Parallel()

	r := &Result{Intents: []IntentScore{
		{Intent: "low", Score: 0.2},
		{Intent: "high", Score: 0.9},
		{Intent: "mid", Score: 0.5},
	}}
	intent, score := r.TopIntent()
	if intent != "high" || score != 0.9 {
		t.Fatalf("TopIntent() = %q %v, want high 0.9", intent, score)
	}
}

func TestTopIntentTieKeepsFirst(t *testing.T) {
	t.Parallel()

	r := &Result{Intents: []IntentScore{
		{Intent: "first", Score: 0.7},
		{Intent: "second", Score: 0.7},
	}}
	intent, _ := r.TopIntent()
	if intent != "first" {
		t.Fatalf("TopIntent() tie = %q, want first (service order)", intent)
	}
}

func TestNewHTTPClientRequiresConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		endpoint string
		appID    string
		key      string
	}{
		{"missing endpoint", "", "app", "key"},
		{"missing app id", "http://x", "", "key"},
		{"missing key", "http://x", "app", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewHTTPClient(nil, tc.endpoint, tc.appID, tc.key); err == nil {
				t.Fatalf("NewHTTPClient() accepted incomplete config")
			}
		})
	}
}

func TestHTTPClientRecognize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "secret" {
			t.Errorf("subscription key header = %q", got)
		}
		if got := r.URL.Path; got != "/apps/app-1" {
			t.Errorf("path = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "I like IPAs" {
			t.Errorf("query = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "I like IPAs",
			"intents": [
				{"intent": "beerPreference", "score": 0.92},
				{"intent": "None", "score": 0.05}
			],
			"entities": [
				{"entity": "ipas", "type": "beerType"},
				{"entity": "stouts", "type": "beerType"}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.Client(), srv.URL, "app-1", "secret")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	res, err := client.Recognize(context.Background(), "I like IPAs")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	intent, score := res.TopIntent()
	if intent != "beerPreference" || score != 0.92 {
		t.Fatalf("TopIntent() = %q %v", intent, score)
	}
	if got := res.Entities["beerType"]; len(got) != 2 || got[0] != "ipas" || got[1] != "stouts" {
		t.Fatalf("entities = %v, want grouped by type", res.Entities)
	}
}

func TestHTTPClientRecognizeEmptyText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request made for empty text")
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.Client(), srv.URL, "app-1", "secret")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	res, err := client.Recognize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if intent, _ := res.TopIntent(); intent != NoneIntent {
		t.Fatalf("TopIntent() = %q, want %q", intent, NoneIntent)
	}
}

func TestHTTPClientRecognizeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.Client(), srv.URL, "app-1", "secret")
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if _, err := client.Recognize(context.Background(), "hello"); err == nil {
		t.Fatalf("Recognize() error = nil, want http failure")
	}
}
