package dialogs

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/state"
)

const (
	choicePrompts    = "Prompts"
	choiceRichCards  = "Rich Cards"
	choiceEchos      = "Echos"
	choiceProactive  = "Proactive Messages"
	choiceIntent     = "Intent Recognition"
	choiceKnowledge  = "QnA"
	choiceBack       = "Back"
)

var testingChoices = []string{
	choicePrompts, choiceRichCards, choiceEchos,
	choiceProactive, choiceIntent, choiceKnowledge, choiceBack,
}

// testingDialog is the top-level menu. It records each fully launched test
// on the user's durable profile and re-shows itself after a leaf pops.
type testingDialog struct {
	profile *state.Property
	logger  *slog.Logger
}

func registerTesting(set *dialog.Set, deps Dependencies) error {
	t := &testingDialog{profile: deps.Profile, logger: deps.Logger}
	return addWaterfall(set, TestingID, []dialog.WaterfallStep{
		t.promptForTest,
		t.runSelection,
		t.restart,
	})
}

func (t *testingDialog) promptForTest(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	t.logger.Info("test_menu_shown")
	return step.Prompt(ctx, promptChoice, menuPrompt("Main Test", testingChoices))
}

func (t *testingDialog) runSelection(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	selection := resultString(step)
	if selection != "" && selection != choiceBack {
		if err := t.recordExecution(ctx, step, selection); err != nil {
			return dialog.TurnResult{}, err
		}
	}
	switch selection {
	case choicePrompts:
		return step.Begin(ctx, PromptsID, nil)
	case choiceRichCards:
		return step.Begin(ctx, RichCardsID, nil)
	case choiceEchos:
		return step.Begin(ctx, EchosID, nil)
	case choiceProactive:
		return step.Begin(ctx, ProactiveID, step.RawOptions())
	case choiceIntent:
		return step.Begin(ctx, IntentID, nil)
	case choiceKnowledge:
		return step.Begin(ctx, QnaID, nil)
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (t *testingDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	t.logger.Info("test_completed", "menu", "Main Test")
	return step.Replace(ctx, TestingID, step.RawOptions())
}

func (t *testingDialog) recordExecution(ctx context.Context, step *dialog.WaterfallStepContext, name string) error {
	tc := step.Context().Turn()
	var profile UserProfile
	if _, err := t.profile.Get(ctx, tc, &profile); err != nil {
		return err
	}
	if slices.Contains(profile.TestsExecuted, name) {
		return nil
	}
	profile.TestsExecuted = append(profile.TestsExecuted, name)
	return t.profile.Set(ctx, tc, profile)
}
