package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mdrichardson/testerBot/activity"
)

// PromptOptions configures a single prompt exchange.
type PromptOptions struct {
	Prompt      string   `json:"prompt"`
	RetryPrompt string   `json:"retry_prompt,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// recognizeFunc resolves this turn's input to the prompt's typed value.
type recognizeFunc func(a *activity.Activity, opts PromptOptions) (any, bool)

// Prompt is a dialog that asks for one value, validates the reply, and ends
// with the typed result. Invalid input re-sends the retry prompt and keeps
// waiting.
type Prompt struct {
	id        ID
	recognize recognizeFunc
}

func newPrompt(id ID, recognize recognizeFunc) (*Prompt, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Prompt{id: id, recognize: recognize}, nil
}

func NewTextPrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, _ PromptOptions) (any, bool) {
		text := strings.TrimSpace(a.Text)
		return text, text != ""
	})
}

func NewNumberPrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, _ PromptOptions) (any, bool) {
		n, err := strconv.ParseFloat(strings.TrimSpace(a.Text), 64)
		return n, err == nil
	})
}

func NewConfirmPrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, _ PromptOptions) (any, bool) {
		switch strings.ToLower(strings.TrimSpace(a.Text)) {
		case "yes", "y", "true", "1", "ok":
			return true, true
		case "no", "n", "false", "0":
			return false, true
		default:
			return nil, false
		}
	})
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"3:04 PM",
	"15:04",
}

func NewDateTimePrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, _ PromptOptions) (any, bool) {
		text := strings.TrimSpace(a.Text)
		for _, layout := range dateTimeLayouts {
			if _, err := time.Parse(layout, text); err == nil {
				return text, true
			}
		}
		return nil, false
	})
}

// NewChoicePrompt resolves input against the configured choice list by exact
// label (case-insensitive) or 1-based position, ending with the canonical
// label.
func NewChoicePrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, opts PromptOptions) (any, bool) {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return nil, false
		}
		for _, choice := range opts.Choices {
			if strings.EqualFold(choice, text) {
				return choice, true
			}
		}
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(opts.Choices) {
			return opts.Choices[n-1], true
		}
		return nil, false
	})
}

func NewAttachmentPrompt(id ID) (*Prompt, error) {
	return newPrompt(id, func(a *activity.Activity, _ PromptOptions) (any, bool) {
		return a.Attachments, len(a.Attachments) > 0
	})
}

func (p *Prompt) ID() ID { return p.id }

func (p *Prompt) promptOptions(dc *Context) (PromptOptions, error) {
	frame := dc.ActiveDialog()
	if frame == nil || frame.ID != p.id {
		return PromptOptions{}, fmt.Errorf("dialog: prompt %q is not the active dialog", p.id)
	}
	var opts PromptOptions
	if _, err := frame.DecodeOptions(&opts); err != nil {
		return PromptOptions{}, err
	}
	return opts, nil
}

func renderPrompt(opts PromptOptions) string {
	if len(opts.Choices) == 0 {
		return opts.Prompt
	}
	var b strings.Builder
	b.WriteString(opts.Prompt)
	for i, choice := range opts.Choices {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, choice)
	}
	return b.String()
}

func (p *Prompt) Begin(ctx context.Context, dc *Context) (TurnResult, error) {
	opts, err := p.promptOptions(dc)
	if err != nil {
		return TurnResult{}, err
	}
	if err := dc.Turn().SendText(ctx, renderPrompt(opts)); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{Status: StatusWaiting}, nil
}

func (p *Prompt) Continue(ctx context.Context, dc *Context) (TurnResult, error) {
	opts, err := p.promptOptions(dc)
	if err != nil {
		return TurnResult{}, err
	}
	if value, ok := p.recognize(dc.Turn().Activity(), opts); ok {
		return dc.End(ctx, value)
	}
	retry := opts.RetryPrompt
	if retry == "" {
		retry = renderPrompt(opts)
	}
	if err := dc.Turn().SendText(ctx, retry); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{Status: StatusWaiting}, nil
}

// Resume re-issues the prompt; prompts do not begin children, so reaching
// here means the stack was rearranged around the prompt.
func (p *Prompt) Resume(ctx context.Context, dc *Context, _ any) (TurnResult, error) {
	return p.Begin(ctx, dc)
}

func (p *Prompt) Reprompt(ctx context.Context, dc *Context) error {
	opts, err := p.promptOptions(dc)
	if err != nil {
		return err
	}
	return dc.Turn().SendText(ctx, renderPrompt(opts))
}
