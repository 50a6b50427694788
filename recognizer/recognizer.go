// Package recognizer is the client for the hosted intent-recognition
// service: it maps free-form turn text to a ranked intent list plus
// extracted entities.
package recognizer

import "context"

// NoneIntent is reported when nothing was recognized.
const NoneIntent = "None"

type IntentScore struct {
	Intent string  `json:"intent"`
	Score  float64 `json:"score"`
}

// Result is the recognition outcome for one message turn. Intents keep the
// service's returned order; Result values are never mutated after creation.
type Result struct {
	Text     string              `json:"text"`
	Intents  []IntentScore       `json:"intents"`
	Entities map[string][]string `json:"entities,omitempty"`
}

// TopIntent returns the highest-confidence intent label. Ties keep the
// first entry in service-returned order. A nil or empty result yields
// NoneIntent.
func (r *Result) TopIntent() (string, float64) {
	if r == nil || len(r.Intents) == 0 {
		return NoneIntent, 0
	}
	top := r.Intents[0]
	for _, in := range r.Intents[1:] {
		if in.Score > top.Score {
			top = in
		}
	}
	return top.Intent, top.Score
}

type Client interface {
	Recognize(ctx context.Context, text string) (*Result, error)
}
