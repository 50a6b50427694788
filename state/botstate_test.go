package state

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
)

func newTestTurn(t *testing.T, convID, fromID string) *channel.TurnContext {
	t.Helper()
	adapter, err := channel.New(channel.Options{Logger: slog.Default()})
	if err != nil {
		t.Fatalf("channel.New() error = %v", err)
	}
	act := &activity.Activity{
		Kind:         activity.KindMessage,
		ChannelID:    "test",
		Conversation: activity.ConversationAccount{ID: convID},
		From:         activity.ChannelAccount{ID: fromID},
		Recipient:    activity.ChannelAccount{ID: "bot"},
		Text:         "hi",
	}
	tc, err := adapter.ProcessActivity(context.Background(), act, func(context.Context, *channel.TurnContext) error {
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessActivity() error = %v", err)
	}
	return tc
}

type fakeProfile struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPropertyRoundTripAcrossTurns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage()
	userState, err := NewUserState(store)
	if err != nil {
		t.Fatalf("NewUserState() error = %v", err)
	}
	prop, err := userState.Property("profile")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}

	// Turn 1: nothing stored yet.
	tc := newTestTurn(t, "c1", "u1")
	var got fakeProfile
	found, err := prop.Get(ctx, tc, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() found = true on empty store")
	}
	if err := prop.Set(ctx, tc, fakeProfile{Name: "alpha", Count: 2}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := userState.SaveChanges(ctx, tc); err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}

	// Turn 2: same user, different conversation; user state carries over.
	tc = newTestTurn(t, "c2", "u1")
	found, err = prop.Get(ctx, tc, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() found = false after save")
	}
	if got.Name != "alpha" || got.Count != 2 {
		t.Fatalf("Get() = %+v, want {alpha 2}", got)
	}

	// A different user sees nothing.
	tc = newTestTurn(t, "c1", "u2")
	found, err = prop.Get(ctx, tc, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() leaked state across users")
	}
}

func TestConversationStateIsScopedPerConversation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage()
	convState, err := NewConversationState(store)
	if err != nil {
		t.Fatalf("NewConversationState() error = %v", err)
	}
	prop, err := convState.Property("dialogState")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}

	tc := newTestTurn(t, "c1", "u1")
	if err := prop.Set(ctx, tc, map[string]int{"step": 3}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := convState.SaveChanges(ctx, tc); err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}

	tc = newTestTurn(t, "c2", "u1")
	var got map[string]int
	found, err := prop.Get(ctx, tc, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() leaked state across conversations")
	}
}

func TestSaveChangesSkipsCleanState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage()
	convState, err := NewConversationState(store)
	if err != nil {
		t.Fatalf("NewConversationState() error = %v", err)
	}
	prop, err := convState.Property("dialogState")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}

	tc := newTestTurn(t, "c1", "u1")
	var got map[string]int
	if _, err := prop.Get(ctx, tc, &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := convState.SaveChanges(ctx, tc); err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}
	items, err := store.Read(ctx, []string{"test/conversations/c1"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("SaveChanges() wrote a record for an unchanged state")
	}
}

func TestPropertyDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStorage()
	userState, err := NewUserState(store)
	if err != nil {
		t.Fatalf("NewUserState() error = %v", err)
	}
	prop, err := userState.Property("profile")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}

	tc := newTestTurn(t, "c1", "u1")
	if err := prop.Set(ctx, tc, fakeProfile{Name: "beta"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := prop.Delete(ctx, tc); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	var got fakeProfile
	found, err := prop.Get(ctx, tc, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() found deleted property")
	}
}
