package dialog

import (
	"context"
	"encoding/json"
	"fmt"
)

// WaterfallStep is one step of a waterfall. Steps either prompt (begin a
// child dialog and wait), advance with Next, branch with Begin/Replace, or
// finish with EndDialog.
type WaterfallStep func(ctx context.Context, step *WaterfallStepContext) (TurnResult, error)

// WaterfallDialog runs an ordered sequence of steps, one step per turn.
// The step index is persisted in the dialog frame between turns.
type WaterfallDialog struct {
	id    ID
	steps []WaterfallStep
}

func NewWaterfall(id ID, steps []WaterfallStep) (*WaterfallDialog, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("dialog: waterfall %q requires at least one step", id)
	}
	return &WaterfallDialog{id: id, steps: steps}, nil
}

func (w *WaterfallDialog) ID() ID { return w.id }

func (w *WaterfallDialog) Begin(ctx context.Context, dc *Context) (TurnResult, error) {
	return w.runStep(ctx, dc, 0, nil)
}

func (w *WaterfallDialog) Continue(ctx context.Context, dc *Context) (TurnResult, error) {
	// Free-form input while no child prompt is active advances the
	// waterfall with the raw message text.
	return w.runStep(ctx, dc, w.stepIndex(dc)+1, dc.Turn().Activity().Text)
}

func (w *WaterfallDialog) Resume(ctx context.Context, dc *Context, result any) (TurnResult, error) {
	return w.runStep(ctx, dc, w.stepIndex(dc)+1, result)
}

func (w *WaterfallDialog) stepIndex(dc *Context) int {
	if frame := dc.ActiveDialog(); frame != nil && frame.ID == w.id {
		return frame.Step
	}
	return 0
}

func (w *WaterfallDialog) runStep(ctx context.Context, dc *Context, index int, result any) (TurnResult, error) {
	if index >= len(w.steps) {
		return dc.End(ctx, result)
	}
	frame := dc.ActiveDialog()
	if frame == nil || frame.ID != w.id {
		return TurnResult{}, fmt.Errorf("dialog: waterfall %q is not the active dialog", w.id)
	}
	frame.Step = index
	step := &WaterfallStepContext{
		dc:        dc,
		waterfall: w,
		index:     index,
		options:   frame.Options,
		Result:    result,
	}
	return w.steps[index](ctx, step)
}

// WaterfallStepContext is the view a step has of its waterfall and turn.
type WaterfallStepContext struct {
	dc        *Context
	waterfall *WaterfallDialog
	index     int
	options   json.RawMessage

	// Result carries the ended child's result, the resolved prompt value,
	// or the raw message text depending on how the step was reached.
	Result any
}

func (s *WaterfallStepContext) Context() *Context { return s.dc }

func (s *WaterfallStepContext) Options(out any) (bool, error) {
	if len(s.options) == 0 || string(s.options) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(s.options, out); err != nil {
		return false, fmt.Errorf("dialog: decode step options for %q: %w", s.waterfall.id, err)
	}
	return true, nil
}

// RawOptions returns the serialized options for pass-through to another
// dialog without decoding.
func (s *WaterfallStepContext) RawOptions() json.RawMessage { return s.options }

// Next runs the following step immediately within the same turn.
func (s *WaterfallStepContext) Next(ctx context.Context, result any) (TurnResult, error) {
	return s.waterfall.runStep(ctx, s.dc, s.index+1, result)
}

// Prompt begins a prompt dialog as a child of this waterfall.
func (s *WaterfallStepContext) Prompt(ctx context.Context, promptID ID, opts PromptOptions) (TurnResult, error) {
	return s.dc.Begin(ctx, promptID, opts)
}

func (s *WaterfallStepContext) Begin(ctx context.Context, id ID, opts any) (TurnResult, error) {
	return s.dc.Begin(ctx, id, opts)
}

// Replace swaps this waterfall's frame for the target dialog.
func (s *WaterfallStepContext) Replace(ctx context.Context, id ID, opts any) (TurnResult, error) {
	return s.dc.Replace(ctx, id, opts)
}

func (s *WaterfallStepContext) EndDialog(ctx context.Context, result any) (TurnResult, error) {
	return s.dc.End(ctx, result)
}

func (s *WaterfallStepContext) Send(ctx context.Context, text string) error {
	return s.dc.Turn().SendText(ctx, text)
}
