package dialogs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/dialog"
)

const (
	promptsText       dialog.ID = "prompts.text"
	promptsNumber     dialog.ID = "prompts.number"
	promptsDateTime   dialog.ID = "prompts.dateTime"
	promptsConfirm    dialog.ID = "prompts.confirm"
	promptsAttachment dialog.ID = "prompts.attachment"
)

var promptsChoices = []string{"Text", "Number", "DateTime", "Confirm", "Attachment", choiceBack}

type promptsDialog struct {
	logger *slog.Logger
}

func registerPrompting(set *dialog.Set, deps Dependencies) error {
	p := &promptsDialog{logger: deps.Logger}
	if err := addWaterfall(set, PromptsID, []dialog.WaterfallStep{
		p.promptForSelection,
		p.directToTest,
		p.restart,
	}); err != nil {
		return err
	}
	subFlows := []struct {
		id    dialog.ID
		steps []dialog.WaterfallStep
	}{
		{promptsText, []dialog.WaterfallStep{p.startText, p.endText}},
		{promptsNumber, []dialog.WaterfallStep{p.startNumber, p.endNumber}},
		{promptsDateTime, []dialog.WaterfallStep{p.startDateTime, p.endDateTime}},
		{promptsConfirm, []dialog.WaterfallStep{p.startConfirm, p.endConfirm}},
		{promptsAttachment, []dialog.WaterfallStep{p.startAttachment, p.endAttachment}},
	}
	for _, sub := range subFlows {
		if err := addWaterfall(set, sub.id, sub.steps); err != nil {
			return err
		}
	}
	return nil
}

func (p *promptsDialog) promptForSelection(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptChoice, menuPrompt("Prompt", promptsChoices))
}

func (p *promptsDialog) directToTest(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	switch resultString(step) {
	case "Text":
		return step.Begin(ctx, promptsText, nil)
	case "Number":
		return step.Begin(ctx, promptsNumber, nil)
	case "DateTime":
		return step.Begin(ctx, promptsDateTime, nil)
	case "Confirm":
		return step.Begin(ctx, promptsConfirm, nil)
	case "Attachment":
		return step.Begin(ctx, promptsAttachment, nil)
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (p *promptsDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, PromptsID, nil)
}

func (p *promptsDialog) startText(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	p.logger.Info("test_started", "test", "text prompt")
	return step.Prompt(ctx, promptText, dialog.PromptOptions{
		Prompt: "Enter some text and I'll repeat it back.",
	})
}

func (p *promptsDialog) endText(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if err := step.Send(ctx, fmt.Sprintf("You said: %v", step.Result)); err != nil {
		return dialog.TurnResult{}, err
	}
	p.logger.Info("test_completed", "test", "text prompt")
	return step.EndDialog(ctx, nil)
}

func (p *promptsDialog) startNumber(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	p.logger.Info("test_started", "test", "number prompt")
	return step.Prompt(ctx, promptNumber, dialog.PromptOptions{
		Prompt:      "Enter a number and I'll repeat it back and confirm it was a number.",
		RetryPrompt: "That wasn't a number.",
	})
}

func (p *promptsDialog) endNumber(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if err := step.Send(ctx, fmt.Sprintf("You said: %v, which is a number", step.Result)); err != nil {
		return dialog.TurnResult{}, err
	}
	p.logger.Info("test_completed", "test", "number prompt")
	return step.EndDialog(ctx, nil)
}

func (p *promptsDialog) startDateTime(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	p.logger.Info("test_started", "test", "datetime prompt")
	return step.Prompt(ctx, promptDateTime, dialog.PromptOptions{
		Prompt:      "Enter a date-time string.",
		RetryPrompt: "That wasn't a valid date-time string. Please use an appropriate format.",
	})
}

func (p *promptsDialog) endDateTime(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if err := step.Send(ctx, fmt.Sprintf("You said: %v, which is a valid date-time string", step.Result)); err != nil {
		return dialog.TurnResult{}, err
	}
	p.logger.Info("test_completed", "test", "datetime prompt")
	return step.EndDialog(ctx, nil)
}

func (p *promptsDialog) startConfirm(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	p.logger.Info("test_started", "test", "confirm prompt")
	return step.Prompt(ctx, promptConfirm, dialog.PromptOptions{
		Prompt:      "Please confirm.",
		RetryPrompt: "That wasn't a valid confirmation. Answer yes or no.",
	})
}

func (p *promptsDialog) endConfirm(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if err := step.Send(ctx, fmt.Sprintf("You said: %v, which is a valid confirmation", step.Result)); err != nil {
		return dialog.TurnResult{}, err
	}
	p.logger.Info("test_completed", "test", "confirm prompt")
	return step.EndDialog(ctx, nil)
}

func (p *promptsDialog) startAttachment(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	p.logger.Info("test_started", "test", "attachment prompt")
	return step.Prompt(ctx, promptAttachment, dialog.PromptOptions{
		Prompt: "Send me an attachment of any kind and I'll tell you all the details I know about it.",
	})
}

func (p *promptsDialog) endAttachment(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	attachments, _ := step.Result.([]activity.Attachment)
	if len(attachments) == 0 {
		if err := step.Send(ctx, "I didn't receive an attachment."); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.EndDialog(ctx, nil)
	}
	first := attachments[0]
	reply := fmt.Sprintf(
		"You sent:\n  Name: %s\n  Content Type: %s\n  Content URL: %s\n  Thumbnail URL: %s",
		first.Name, first.ContentType, first.ContentURL, first.ThumbnailURL)
	echo := &activity.Activity{Text: reply, Attachments: attachments[:1]}
	if err := step.Context().Turn().SendActivity(ctx, echo); err != nil {
		return dialog.TurnResult{}, err
	}
	p.logger.Info("test_completed", "test", "attachment prompt")
	return step.EndDialog(ctx, nil)
}
