package dialogs

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/recognizer"
	"github.com/mdrichardson/testerBot/state"
)

// harness registers the full dialog set against in-memory state and drives
// stack operations across simulated turns.
type harness struct {
	t       *testing.T
	storage *state.MemoryStorage
	adapter *channel.Adapter
	conv    *state.BotState
	user    *state.BotState
	set     *dialog.Set
}

func newHarness(t *testing.T, httpClient *http.Client) *harness {
	t.Helper()
	adapter, err := channel.New(channel.Options{Logger: slog.Default(), HTTPClient: httpClient})
	if err != nil {
		t.Fatalf("channel.New() error = %v", err)
	}
	storage := state.NewMemoryStorage()
	conv, err := state.NewConversationState(storage)
	if err != nil {
		t.Fatalf("NewConversationState() error = %v", err)
	}
	user, err := state.NewUserState(storage)
	if err != nil {
		t.Fatalf("NewUserState() error = %v", err)
	}
	dialogProp, err := conv.Property("dialogState")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}
	profileProp, err := user.Property("userProfile")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}
	set, err := dialog.NewSet(dialogProp)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	if err := Register(set, Dependencies{
		Storage: storage,
		Adapter: adapter,
		Profile: profileProp,
		Logger:  slog.Default(),
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return &harness{t: t, storage: storage, adapter: adapter, conv: conv, user: user, set: set}
}

func (h *harness) turn(text string, fn func(ctx context.Context, dc *dialog.Context) error) *channel.TurnContext {
	h.t.Helper()
	act := &activity.Activity{
		Kind:         activity.KindMessage,
		ChannelID:    "test",
		Conversation: activity.ConversationAccount{ID: "c1"},
		From:         activity.ChannelAccount{ID: "user", Name: "User"},
		Recipient:    activity.ChannelAccount{ID: "bot", Name: "Bot"},
		Text:         text,
	}
	var turnErr error
	tc, err := h.adapter.ProcessActivity(context.Background(), act, func(ctx context.Context, tc *channel.TurnContext) error {
		dc, err := h.set.CreateContext(ctx, tc)
		if err != nil {
			turnErr = err
			return err
		}
		if err := fn(ctx, dc); err != nil {
			turnErr = err
			return err
		}
		if err := h.conv.SaveChanges(ctx, tc); err != nil {
			turnErr = err
			return err
		}
		if err := h.user.SaveChanges(ctx, tc); err != nil {
			turnErr = err
			return err
		}
		return nil
	})
	if err != nil {
		h.t.Fatalf("ProcessActivity() error = %v", err)
	}
	if turnErr != nil {
		h.t.Fatalf("turn failed: %v", turnErr)
	}
	return tc
}

// begin starts a top-level dialog; reply drives the active stack with text.
func (h *harness) begin(id dialog.ID, opts any) *channel.TurnContext {
	return h.turn("start", func(ctx context.Context, dc *dialog.Context) error {
		_, err := dc.Begin(ctx, id, opts)
		return err
	})
}

func (h *harness) reply(text string) *channel.TurnContext {
	return h.turn(text, func(ctx context.Context, dc *dialog.Context) error {
		_, err := dc.Continue(ctx)
		return err
	})
}

func texts(tc *channel.TurnContext) []string {
	var out []string
	for _, a := range tc.Replies() {
		out = append(out, a.Text)
	}
	return out
}

func joined(tc *channel.TurnContext) string {
	return strings.Join(texts(tc), "\n---\n")
}

func TestRegisterRequiresDependencies(t *testing.T) {
	t.Parallel()

	conv, err := state.NewConversationState(state.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewConversationState() error = %v", err)
	}
	prop, err := conv.Property("dialogState")
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}
	set, err := dialog.NewSet(prop)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	if err := Register(set, Dependencies{}); err == nil {
		t.Fatalf("Register() accepted empty dependencies")
	}
}

func TestTestingMenuShowsAllOptions(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	tc := h.begin(TestingID, nil)
	got := joined(tc)
	for _, want := range []string{"Prompts", "Rich Cards", "Echos", "Proactive Messages", "Intent Recognition", "QnA", "Back"} {
		if !strings.Contains(got, want) {
			t.Fatalf("menu missing %q:\n%s", want, got)
		}
	}
}

func TestTestingMenuRecordsExecutedTests(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(TestingID, nil)
	h.reply("Echos")

	// The launch is on the user's durable profile.
	items, err := h.storage.Read(context.Background(), []string{"test/users/user"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	record, ok := items["test/users/user"]
	if !ok {
		t.Fatalf("user profile was not persisted")
	}
	if !strings.Contains(string(record.Value), `"Echos"`) {
		t.Fatalf("profile record = %s, want Echos listed", record.Value)
	}

	// Launching the same test again does not duplicate the entry.
	h.reply("Back")
	h.reply("Echos")
	items, err = h.storage.Read(context.Background(), []string{"test/users/user"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := strings.Count(string(items["test/users/user"].Value), `"Echos"`); got != 1 {
		t.Fatalf("profile lists Echos %d times, want 1", got)
	}
}

func TestTestingMenuBackLoopsToMenu(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(TestingID, nil)
	h.reply("Echos")
	tc := h.reply("Back")
	if got := joined(tc); !strings.Contains(got, "[Main Test]") {
		t.Fatalf("after Back replies = %s, want the main menu again", got)
	}
}

func TestEchosTextEcho(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(EchosID, nil)
	h.reply("Text Echo")
	tc := h.reply("repeat after me")
	if got := joined(tc); !strings.Contains(got, "repeat after me") {
		t.Fatalf("echo replies = %s", got)
	}
}

func TestPromptsNumberFlow(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(PromptsID, nil)
	h.reply("Number")

	// Invalid input retries.
	tc := h.reply("not a number")
	if got := joined(tc); !strings.Contains(strings.ToLower(got), "number") {
		t.Fatalf("retry replies = %s", got)
	}

	tc = h.reply("88")
	if got := joined(tc); !strings.Contains(got, "88") {
		t.Fatalf("number result replies = %s", got)
	}
}

func TestQnaWithoutKnowledgeBase(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(QnaID, nil)
	tc := h.reply("Ask a Question")
	if got := joined(tc); !strings.Contains(got, "knowledge base is not configured") {
		t.Fatalf("qna replies = %s, want unconfigured notice", got)
	}
}

func TestRichCardsDisplaysAllLayouts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(RichCardsID, nil)
	tc := h.reply("Hero")

	var single, list, carousel *activity.Activity
	for _, a := range tc.Replies() {
		switch {
		case a.AttachmentLayout == activity.LayoutList:
			list = a
		case a.AttachmentLayout == activity.LayoutCarousel:
			carousel = a
		case len(a.Attachments) == 1:
			single = a
		}
	}
	if single == nil || len(single.Attachments) != 1 {
		t.Fatalf("missing single-card reply: %s", joined(tc))
	}
	if single.Attachments[0].ContentType != "application/vnd.microsoft.card.hero" {
		t.Fatalf("attachment content type = %q", single.Attachments[0].ContentType)
	}
	if list == nil || len(list.Attachments) != 2 {
		t.Fatalf("missing two-card list reply: %s", joined(tc))
	}
	if carousel == nil || len(carousel.Attachments) != 3 {
		t.Fatalf("missing three-card carousel reply: %s", joined(tc))
	}
}

func TestIntentDialogWithInjectedResult(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	res := &recognizer.Result{
		Text:     "I like IPAs",
		Intents:  []recognizer.IntentScore{{Intent: "beerPreference", Score: 0.92}},
		Entities: map[string][]string{"beerType": {"ipas"}},
	}
	tc := h.begin(IntentID, IntentOptions{Result: res})
	got := joined(tc)
	if !strings.Contains(got, "Your Top Entity: beerType: ipas") {
		t.Fatalf("injected result replies = %s", got)
	}
	if !strings.Contains(got, "Everything else:") {
		t.Fatalf("injected result replies missing dump: %s", got)
	}
	// The detail view hands back to the intent menu.
	if !strings.Contains(got, "[Intent Recognition]") {
		t.Fatalf("injected result replies missing menu: %s", got)
	}
}

func TestIntentDialogUnmatchedUtterance(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.begin(IntentID, nil)
	h.reply("Intent/Entity")
	tc := h.reply("mineral water")
	got := joined(tc)
	if !strings.Contains(got, "That didn't match an intent and entity.") {
		t.Fatalf("unmatched replies = %s", got)
	}
	if !strings.Contains(got, `Try "I like IPAs"`) {
		t.Fatalf("unmatched replies missing hint: %s", got)
	}
}

func TestNewJobIDFormat(t *testing.T) {
	t.Parallel()

	for range 50 {
		id := newJobID()
		if len(id) != 5 {
			t.Fatalf("newJobID() = %q, want 5 characters", id)
		}
		for _, r := range id {
			if r < 'a' || r > 'y' {
				t.Fatalf("newJobID() = %q, character %q out of range", id, r)
			}
		}
	}
}
