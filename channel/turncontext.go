package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdrichardson/testerBot/activity"
)

// TurnContext carries one inbound activity through a single turn. Turns are
// single-threaded: every collaborator call within a turn runs in sequence.
type TurnContext struct {
	adapter   *Adapter
	inbound   *activity.Activity
	replies   []*activity.Activity
	responded bool
	values    map[string]any
}

func newTurnContext(a *Adapter, act *activity.Activity) *TurnContext {
	return &TurnContext{
		adapter: a,
		inbound: act,
		values:  make(map[string]any),
	}
}

func (tc *TurnContext) Activity() *activity.Activity { return tc.inbound }

// Responded reports whether any outbound activity has been sent this turn.
func (tc *TurnContext) Responded() bool { return tc.responded }

// Replies returns the outbound activities collected this turn, in send order.
func (tc *TurnContext) Replies() []*activity.Activity { return tc.replies }

// Value and SetValue form the per-turn cache bag used by state partitions.
func (tc *TurnContext) Value(key string) (any, bool) {
	v, ok := tc.values[key]
	return v, ok
}

func (tc *TurnContext) SetValue(key string, v any) { tc.values[key] = v }

// SendActivity stamps an outbound activity as a reply to the inbound one and
// records it for delivery.
func (tc *TurnContext) SendActivity(ctx context.Context, out *activity.Activity) error {
	if out == nil {
		return fmt.Errorf("channel: outbound activity is nil")
	}
	if out.Kind == "" {
		out.Kind = activity.KindMessage
	}
	out.ID = uuid.NewString()
	out.Timestamp = time.Now().UTC()
	out.ChannelID = tc.inbound.ChannelID
	out.ServiceURL = tc.inbound.ServiceURL
	out.Conversation = tc.inbound.Conversation
	out.From = tc.inbound.Recipient
	out.Recipient = tc.inbound.From
	out.ReplyToID = tc.inbound.ID
	if out.Locale == "" {
		out.Locale = tc.inbound.Locale
	}
	tc.replies = append(tc.replies, out)
	tc.responded = true
	if tc.adapter.stream != nil {
		tc.adapter.stream.Broadcast(out)
	}
	return nil
}

func (tc *TurnContext) SendText(ctx context.Context, text string) error {
	return tc.SendActivity(ctx, activity.NewMessage(text))
}

func (tc *TurnContext) SendActivities(ctx context.Context, outs ...*activity.Activity) error {
	for _, out := range outs {
		if err := tc.SendActivity(ctx, out); err != nil {
			return err
		}
	}
	return nil
}
