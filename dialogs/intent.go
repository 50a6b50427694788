package dialogs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/mdrichardson/testerBot/dialog"
)

const intentDetail dialog.ID = "intent.detail"

var intentChoices = []string{"Intent/Entity", "Interruption", choiceBack}

// intentDialog demonstrates recognition results. The detail sub-flow is also
// the router's short-circuit target: when entered with an injected
// recognition result it skips its own prompt and goes straight to display.
type intentDialog struct {
	logger *slog.Logger
}

func registerIntent(set *dialog.Set, deps Dependencies) error {
	i := &intentDialog{logger: deps.Logger}
	if err := addWaterfall(set, IntentID, []dialog.WaterfallStep{
		i.promptForSelection,
		i.executeAction,
		i.restart,
	}); err != nil {
		return err
	}
	return addWaterfall(set, intentDetail, []dialog.WaterfallStep{
		i.promptForUtterance,
		i.displayIntent,
		i.endDetail,
	})
}

func (i *intentDialog) promptForSelection(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	// Entered via the router's short-circuit: hand the injected result
	// straight to the detail view.
	var opts IntentOptions
	if ok, err := step.Options(&opts); err != nil {
		return dialog.TurnResult{}, err
	} else if ok && opts.Result != nil {
		return step.Replace(ctx, intentDetail, step.RawOptions())
	}
	return step.Prompt(ctx, promptChoice, menuPrompt("Intent Recognition", intentChoices))
}

func (i *intentDialog) executeAction(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	switch resultString(step) {
	case "Intent/Entity":
		return step.Replace(ctx, intentDetail, nil)
	case "Interruption":
		if err := step.Send(ctx, "While any test is running, say \"help\" for a hint or \"cancel\" to stop it."); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.Next(ctx, nil)
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (i *intentDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, IntentID, nil)
}

func (i *intentDialog) promptForUtterance(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	var opts IntentOptions
	if ok, err := step.Options(&opts); err != nil {
		return dialog.TurnResult{}, err
	} else if ok && opts.Result != nil {
		return step.Next(ctx, nil)
	}
	return step.Prompt(ctx, promptText, dialog.PromptOptions{
		Prompt: "Tell me your favorite beer style and I'll return the top intent and everything else the recognizer found.",
	})
}

func (i *intentDialog) displayIntent(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	var opts IntentOptions
	if _, err := step.Options(&opts); err != nil {
		return dialog.TurnResult{}, err
	}
	if opts.Result == nil || len(opts.Result.Entities) == 0 {
		if err := step.Send(ctx, "That didn't match an intent and entity.\nTry \"I like IPAs\""); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.Replace(ctx, intentDetail, nil)
	}

	names := make([]string, 0, len(opts.Result.Entities))
	for name := range opts.Result.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	topName := names[0]
	topValue := ""
	if values := opts.Result.Entities[topName]; len(values) > 0 {
		topValue = values[0]
	}
	if err := step.Send(ctx, "Your Top Entity: "+topName+": "+topValue); err != nil {
		return dialog.TurnResult{}, err
	}
	dump, err := json.MarshalIndent(opts.Result, "", "  ")
	if err != nil {
		return dialog.TurnResult{}, err
	}
	if err := step.Send(ctx, "Everything else:\n"+string(dump)); err != nil {
		return dialog.TurnResult{}, err
	}
	i.logger.Info("test_completed", "test", "intent detail")
	return step.Next(ctx, nil)
}

func (i *intentDialog) endDetail(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, IntentID, nil)
}
