package dialogs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/dialog"
)

const (
	echosText       dialog.ID = "echos.text"
	echosAttachment dialog.ID = "echos.attachment"
)

var echosChoices = []string{"Text Echo", "Attachment Echo", choiceBack}

type echosDialog struct {
	logger *slog.Logger
}

func registerEchos(set *dialog.Set, deps Dependencies) error {
	e := &echosDialog{logger: deps.Logger}
	if err := addWaterfall(set, EchosID, []dialog.WaterfallStep{
		e.promptForSelection,
		e.directToTest,
		e.restart,
	}); err != nil {
		return err
	}
	if err := addWaterfall(set, echosText, []dialog.WaterfallStep{e.getEcho, e.endEcho}); err != nil {
		return err
	}
	return addWaterfall(set, echosAttachment, []dialog.WaterfallStep{e.getAttachment, e.endAttachment})
}

func (e *echosDialog) promptForSelection(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptChoice, menuPrompt("Echo", echosChoices))
}

func (e *echosDialog) directToTest(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	switch resultString(step) {
	case "Text Echo":
		return step.Begin(ctx, echosText, nil)
	case "Attachment Echo":
		return step.Begin(ctx, echosAttachment, nil)
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (e *echosDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, EchosID, nil)
}

func (e *echosDialog) getEcho(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	e.logger.Info("test_started", "test", "text echo")
	return step.Prompt(ctx, promptText, dialog.PromptOptions{
		Prompt: "Enter some text and I'll repeat it back.",
	})
}

func (e *echosDialog) endEcho(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if err := step.Send(ctx, fmt.Sprintf("You said: %v", step.Result)); err != nil {
		return dialog.TurnResult{}, err
	}
	e.logger.Info("test_completed", "test", "text echo")
	return step.EndDialog(ctx, nil)
}

func (e *echosDialog) getAttachment(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	e.logger.Info("test_started", "test", "attachment echo")
	return step.Prompt(ctx, promptAttachment, dialog.PromptOptions{
		Prompt: "Send me an attachment of any kind and I'll send it right back.",
	})
}

func (e *echosDialog) endAttachment(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	attachments, _ := step.Result.([]activity.Attachment)
	if len(attachments) == 0 {
		if err := step.Send(ctx, "I didn't receive an attachment."); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.EndDialog(ctx, nil)
	}
	first := attachments[0]
	reply := fmt.Sprintf("You sent:\n  Name: %s\n  Content Type: %s\n  URL: %s",
		first.Name, first.ContentType, first.ContentURL)
	echo := &activity.Activity{Text: reply, Attachments: attachments[:1]}
	if err := step.Context().Turn().SendActivity(ctx, echo); err != nil {
		return dialog.TurnResult{}, err
	}
	e.logger.Info("test_completed", "test", "attachment echo")
	return step.EndDialog(ctx, nil)
}
