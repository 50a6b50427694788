package dialogs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/kb"
)

const qnaQuestion dialog.ID = "qna.question"

var qnaChoices = []string{"Ask a Question", choiceBack}

const qnaQuestionPrompt = "Ask a question in my knowledge base and I'll provide the answer.\n" +
	"Example questions:\n" +
	"  Why did Microsoft develop the Bot Framework?\n" +
	"  What is the v4 SDK?\n" +
	"  Why is V4 not backwards compatible with V3?\n" +
	"  Should I build a new bot using V3 or V4?"

type qnaDialog struct {
	kb     kb.Client
	logger *slog.Logger
}

func registerQna(set *dialog.Set, deps Dependencies) error {
	q := &qnaDialog{kb: deps.KB, logger: deps.Logger}
	if err := addWaterfall(set, QnaID, []dialog.WaterfallStep{
		q.promptForSelection,
		q.executeAction,
		q.restart,
	}); err != nil {
		return err
	}
	return addWaterfall(set, qnaQuestion, []dialog.WaterfallStep{q.promptForQuestion, q.displayAnswer})
}

func (q *qnaDialog) promptForSelection(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptChoice, menuPrompt("QnA", qnaChoices))
}

func (q *qnaDialog) executeAction(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	switch resultString(step) {
	case "Ask a Question":
		return step.Begin(ctx, qnaQuestion, nil)
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (q *qnaDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, QnaID, nil)
}

func (q *qnaDialog) promptForQuestion(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	q.logger.Info("test_started", "test", "qna question")
	return step.Prompt(ctx, promptText, dialog.PromptOptions{Prompt: qnaQuestionPrompt})
}

func (q *qnaDialog) displayAnswer(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	if q.kb == nil {
		if err := step.Send(ctx, "The knowledge base is not configured."); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.EndDialog(ctx, nil)
	}
	answers, err := q.kb.GetAnswers(ctx, resultString(step))
	if err != nil {
		q.logger.Warn("qna_failed", "error", err)
		if sendErr := step.Send(ctx, "The knowledge base is unavailable right now."); sendErr != nil {
			return dialog.TurnResult{}, sendErr
		}
		return step.EndDialog(ctx, nil)
	}
	if len(answers) == 0 {
		if err := step.Send(ctx, "No Answer Found"); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.EndDialog(ctx, nil)
	}
	if err := step.Send(ctx, "ANSWER FOUND: "+answers[0].Text); err != nil {
		return dialog.TurnResult{}, err
	}
	details, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return dialog.TurnResult{}, err
	}
	if err := step.Send(ctx, "Details:\n"+string(details)); err != nil {
		return dialog.TurnResult{}, err
	}
	q.logger.Info("test_completed", "test", "qna question")
	return step.EndDialog(ctx, nil)
}
