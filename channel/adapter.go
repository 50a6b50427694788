// Package channel is the harness's channel adapter: it frames inbound
// activities into turns, collects outbound replies, mirrors traffic to
// attached dev consoles, and resumes conversations out-of-band for
// proactive delivery.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mdrichardson/testerBot/activity"
)

// apologyText is the single fixed message users see on any unhandled
// turn-level failure. No stack trace is exposed to the channel.
const apologyText = "Oops. Something went wrong!"

type Handler func(ctx context.Context, tc *TurnContext) error

type Adapter struct {
	logger *slog.Logger
	stream *StreamHub
	http   *http.Client
}

type Options struct {
	Logger *slog.Logger
	Stream *StreamHub
	// HTTPClient delivers proactive replies to a reference's service URL.
	HTTPClient *http.Client
}

func New(opts Options) (*Adapter, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("channel: logger is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{
		logger: opts.Logger,
		stream: opts.Stream,
		http:   httpClient,
	}, nil
}

// ProcessActivity runs one turn. A handler error is logged, answered with
// the fixed apology, and not propagated: the turn still yields a response.
func (a *Adapter) ProcessActivity(ctx context.Context, act *activity.Activity, h Handler) (*TurnContext, error) {
	if err := act.Validate(); err != nil {
		return nil, fmt.Errorf("channel: invalid activity: %w", err)
	}
	if h == nil {
		return nil, fmt.Errorf("channel: handler is required")
	}
	tc := newTurnContext(a, act)
	if err := h(ctx, tc); err != nil {
		a.logger.Error("turn_failed",
			"conversation_id", act.Conversation.ID,
			"activity_type", string(act.Kind),
			"error", err)
		if sendErr := tc.SendText(ctx, apologyText); sendErr != nil {
			a.logger.Error("turn_apology_failed", "error", sendErr)
		}
	}
	return tc, nil
}

// ContinueConversation resumes a stored conversation reference outside the
// turn that created it. Replies are POSTed to the reference's service URL
// when one is set; they are always mirrored to attached stream consoles.
func (a *Adapter) ContinueConversation(ctx context.Context, ref activity.Reference, h Handler) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("channel: invalid reference: %w", err)
	}
	if h == nil {
		return fmt.Errorf("channel: handler is required")
	}
	resume := &activity.Activity{Kind: activity.KindEvent, Timestamp: time.Now().UTC()}
	ref.Apply(resume)
	// The resume event originates from the user side of the reference.
	resume.From, resume.Recipient = ref.User, ref.Bot
	tc := newTurnContext(a, resume)
	if err := h(ctx, tc); err != nil {
		return fmt.Errorf("channel: continue conversation: %w", err)
	}
	if ref.ServiceURL == "" {
		return nil
	}
	return a.deliver(ctx, ref.ServiceURL, tc.Replies())
}

func (a *Adapter) deliver(ctx context.Context, serviceURL string, replies []*activity.Activity) error {
	if len(replies) == 0 {
		return nil
	}
	body, err := json.Marshal(map[string]any{"activities": replies})
	if err != nil {
		return fmt.Errorf("channel: marshal proactive payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("channel: deliver to %s: %w", serviceURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("channel: deliver to %s: http %d", serviceURL, resp.StatusCode)
	}
	return nil
}
