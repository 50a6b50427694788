// Package dialogs contains the leaf test dialogs. Every leaf follows the
// same shape: present a choice menu, branch to a sub-flow by label, and pop
// back to the caller on "Back" or an unmatched selection.
package dialogs

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/kb"
	"github.com/mdrichardson/testerBot/recognizer"
	"github.com/mdrichardson/testerBot/state"
)

// Top-level dialog ids. Inner waterfall and prompt ids are namespaced per
// leaf and stay private to this package.
const (
	TestingID   dialog.ID = "testingOptions"
	PromptsID   dialog.ID = "promptsDialog"
	EchosID     dialog.ID = "echosDialog"
	RichCardsID dialog.ID = "richCardsDialog"
	ProactiveID dialog.ID = "proactiveDialog"
	IntentID    dialog.ID = "intentDialog"
	QnaID       dialog.ID = "qnaDialog"
)

// Shared prompt ids, registered once and reused by every leaf.
const (
	promptChoice     dialog.ID = "choicePrompt"
	promptText       dialog.ID = "textPrompt"
	promptNumber     dialog.ID = "numberPrompt"
	promptConfirm    dialog.ID = "confirmPrompt"
	promptDateTime   dialog.ID = "dateTimePrompt"
	promptAttachment dialog.ID = "attachmentPrompt"
)

// SessionOptions is carried by the menu dialog and the proactive leaf: the
// session's correlation id plus the opaque callback reference captured at
// welcome time.
type SessionOptions struct {
	SessionID string              `json:"session_id,omitempty"`
	Reference *activity.Reference `json:"reference,omitempty"`
}

// IntentOptions is the intent-detail dialog's input: the recognition result
// injected by the router's short-circuit path.
type IntentOptions struct {
	Result *recognizer.Result `json:"result,omitempty"`
}

type Dependencies struct {
	Storage state.Storage
	Adapter *channel.Adapter
	// KB may be nil; the knowledge-base leaf then reports itself
	// unconfigured instead of calling out.
	KB      kb.Client
	Profile *state.Property
	Logger  *slog.Logger
}

func (d Dependencies) validate() error {
	if d.Storage == nil {
		return fmt.Errorf("dialogs: storage is required")
	}
	if d.Adapter == nil {
		return fmt.Errorf("dialogs: channel adapter is required")
	}
	if d.Profile == nil {
		return fmt.Errorf("dialogs: user profile property is required")
	}
	return nil
}

// Register adds the shared prompts and every leaf dialog to the set.
func Register(set *dialog.Set, deps Dependencies) error {
	if set == nil {
		return fmt.Errorf("dialogs: dialog set is required")
	}
	if err := deps.validate(); err != nil {
		return err
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	if err := registerPrompts(set); err != nil {
		return err
	}
	registrations := []func(*dialog.Set, Dependencies) error{
		registerTesting,
		registerPrompting,
		registerEchos,
		registerRichCards,
		registerProactive,
		registerIntent,
		registerQna,
	}
	for _, register := range registrations {
		if err := register(set, deps); err != nil {
			return err
		}
	}
	return nil
}

func registerPrompts(set *dialog.Set) error {
	builders := []struct {
		id    dialog.ID
		build func(dialog.ID) (*dialog.Prompt, error)
	}{
		{promptChoice, dialog.NewChoicePrompt},
		{promptText, dialog.NewTextPrompt},
		{promptNumber, dialog.NewNumberPrompt},
		{promptConfirm, dialog.NewConfirmPrompt},
		{promptDateTime, dialog.NewDateTimePrompt},
		{promptAttachment, dialog.NewAttachmentPrompt},
	}
	for _, b := range builders {
		p, err := b.build(b.id)
		if err != nil {
			return err
		}
		if err := set.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func addWaterfall(set *dialog.Set, id dialog.ID, steps []dialog.WaterfallStep) error {
	w, err := dialog.NewWaterfall(id, steps)
	if err != nil {
		return err
	}
	return set.Add(w)
}

func menuPrompt(menuName string, choices []string) dialog.PromptOptions {
	return dialog.PromptOptions{
		Prompt:      fmt.Sprintf("What [%s] would you like to test?", menuName),
		RetryPrompt: "I didn't understand that. Please pick an option.",
		Choices:     choices,
	}
}

func resultString(step *dialog.WaterfallStepContext) string {
	s, _ := step.Result.(string)
	return s
}

// newJobID returns a 5-character lowercase proactive job identifier.
func newJobID() string {
	id := make([]byte, 5)
	for i := range id {
		id[i] = byte('a' + rand.IntN(25))
	}
	return string(id)
}
