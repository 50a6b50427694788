package dialogs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/state"
)

const proactiveGetID dialog.ID = "proactive.getId"

var proactiveChoices = []string{"Start", "Check", "Close", choiceBack}

// jobRecord is one proactive job: completion flag plus the opaque callback
// reference used to deliver the out-of-band notification.
type jobRecord struct {
	Completed bool                `json:"completed"`
	Reference *activity.Reference `json:"reference,omitempty"`
}

type jobList struct {
	Jobs map[string]jobRecord `json:"list"`
}

// proactiveDialog demonstrates out-of-band notification delivery: it records
// pending jobs in durable storage and, on close, resumes the stored
// conversation reference outside the originating turn.
type proactiveDialog struct {
	storage state.Storage
	adapter *channel.Adapter
	logger  *slog.Logger
}

func registerProactive(set *dialog.Set, deps Dependencies) error {
	p := &proactiveDialog{storage: deps.Storage, adapter: deps.Adapter, logger: deps.Logger}
	if err := addWaterfall(set, ProactiveID, []dialog.WaterfallStep{
		p.promptForAction,
		p.executeAction,
		p.restart,
	}); err != nil {
		return err
	}
	return addWaterfall(set, proactiveGetID, []dialog.WaterfallStep{p.getID, p.closeJob, p.restart})
}

func (p *proactiveDialog) storageKey(step *dialog.WaterfallStepContext) string {
	var opts SessionOptions
	_, _ = step.Options(&opts)
	session := opts.SessionID
	if session == "" {
		session = "default"
	}
	return "proactive/" + session
}

func (p *proactiveDialog) readJobs(ctx context.Context, key string) (jobList, error) {
	items, err := p.storage.Read(ctx, []string{key})
	if err != nil {
		return jobList{}, err
	}
	list := jobList{Jobs: make(map[string]jobRecord)}
	if item, ok := items[key]; ok {
		if err := json.Unmarshal(item.Value, &list); err != nil {
			return jobList{}, fmt.Errorf("dialogs: decode job list: %w", err)
		}
		if list.Jobs == nil {
			list.Jobs = make(map[string]jobRecord)
		}
	}
	return list, nil
}

// writeJobs force-overwrites the job list. Read-modify-write races are
// accepted here: last writer wins (known limitation of the demo store).
func (p *proactiveDialog) writeJobs(ctx context.Context, key string, list jobList) error {
	value, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("dialogs: encode job list: %w", err)
	}
	return p.storage.Write(ctx, map[string]state.Item{
		key: {Value: value, ETag: state.ETagAny},
	})
}

func (p *proactiveDialog) promptForAction(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptChoice, menuPrompt("Proactive Messaging", proactiveChoices))
}

func (p *proactiveDialog) executeAction(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	switch resultString(step) {
	case "Start":
		return p.startJob(ctx, step)
	case "Check":
		return p.checkJobs(ctx, step)
	case "Close":
		return step.Replace(ctx, proactiveGetID, step.RawOptions())
	default:
		return step.EndDialog(ctx, nil)
	}
}

func (p *proactiveDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, ProactiveID, step.RawOptions())
}

func (p *proactiveDialog) startJob(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	var opts SessionOptions
	if _, err := step.Options(&opts); err != nil {
		return dialog.TurnResult{}, err
	}
	key := p.storageKey(step)
	id := newJobID()
	if err := step.Send(ctx, fmt.Sprintf("Creating ID #: %s", id)); err != nil {
		return dialog.TurnResult{}, err
	}

	list, err := p.readJobs(ctx, key)
	if err == nil {
		list.Jobs[id] = jobRecord{Completed: false, Reference: opts.Reference}
		err = p.writeJobs(ctx, key, list)
	}
	if err != nil {
		p.logger.Warn("proactive_write_failed", "job_id", id, "error", err)
		if sendErr := step.Send(ctx, "Failed to save id to storage"); sendErr != nil {
			return dialog.TurnResult{}, sendErr
		}
		return step.Next(ctx, nil)
	}
	if err := step.Send(ctx, fmt.Sprintf("Successfully wrote ID: %s to storage", id)); err != nil {
		return dialog.TurnResult{}, err
	}
	return step.Next(ctx, nil)
}

func (p *proactiveDialog) checkJobs(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	list, err := p.readJobs(ctx, p.storageKey(step))
	if err != nil {
		return dialog.TurnResult{}, err
	}
	if len(list.Jobs) == 0 {
		if err := step.Send(ctx, "There are no active ids in storage"); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.Next(ctx, nil)
	}
	ids := make([]string, 0, len(list.Jobs))
	for id := range list.Jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := []string{"ID | Conversation | Completed"}
	for _, id := range ids {
		rec := list.Jobs[id]
		conversation := "-"
		if rec.Reference != nil {
			conversation = rec.Reference.Conversation.ID
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %t", id, conversation, rec.Completed))
	}
	if err := step.Send(ctx, strings.Join(lines, "\n")); err != nil {
		return dialog.TurnResult{}, err
	}
	return step.Next(ctx, nil)
}

func (p *proactiveDialog) getID(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptText, dialog.PromptOptions{
		Prompt: "Enter the proactive ID to close",
	})
}

func (p *proactiveDialog) closeJob(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	id := resultString(step)
	key := p.storageKey(step)
	list, err := p.readJobs(ctx, key)
	if err != nil {
		return dialog.TurnResult{}, err
	}
	rec, ok := list.Jobs[id]
	if !ok {
		if err := step.Send(ctx, fmt.Sprintf("Sorry. Nothing in storage with ID: %s. Try again.", id)); err != nil {
			return dialog.TurnResult{}, err
		}
		return step.Replace(ctx, proactiveGetID, step.RawOptions())
	}
	switch {
	case rec.Completed:
		if err := step.Send(ctx, "This id is already completed. Please create a new one."); err != nil {
			return dialog.TurnResult{}, err
		}
	case rec.Reference == nil:
		if err := step.Send(ctx, "This id has no stored reference to notify."); err != nil {
			return dialog.TurnResult{}, err
		}
	default:
		deliverErr := p.adapter.ContinueConversation(ctx, *rec.Reference,
			func(ctx context.Context, ptc *channel.TurnContext) error {
				return ptc.SendText(ctx, fmt.Sprintf("Job completed: %s", id))
			})
		if deliverErr != nil {
			p.logger.Warn("proactive_delivery_failed", "job_id", id, "error", deliverErr)
			if err := step.Send(ctx, "Failed to deliver the notification."); err != nil {
				return dialog.TurnResult{}, err
			}
			break
		}
		rec.Completed = true
		list.Jobs[id] = rec
		if err := p.writeJobs(ctx, key, list); err != nil {
			return dialog.TurnResult{}, err
		}
		if err := step.Send(ctx, "ID closed. Notification sent."); err != nil {
			return dialog.TurnResult{}, err
		}
	}
	return step.Next(ctx, nil)
}
