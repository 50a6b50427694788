package dialog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdrichardson/testerBot/channel"
)

// Context drives one conversation's dialog stack for the current turn.
// Exactly one Context exists per turn; it is never shared across turns.
type Context struct {
	set   *Set
	tc    *channel.TurnContext
	state *State
}

func (dc *Context) Turn() *channel.TurnContext { return dc.tc }

// ActiveDialog returns the innermost frame, or nil when the stack is empty.
func (dc *Context) ActiveDialog() *Frame {
	if len(dc.state.Stack) == 0 {
		return nil
	}
	return &dc.state.Stack[len(dc.state.Stack)-1]
}

func (dc *Context) persist(ctx context.Context) error {
	return dc.set.prop.Set(ctx, dc.tc, dc.state)
}

// Begin pushes a new frame for the dialog and starts it. Options are
// serialized into the frame so they survive across turns.
func (dc *Context) Begin(ctx context.Context, id ID, opts any) (TurnResult, error) {
	d, ok := dc.set.Find(id)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %q", ErrUnknownDialog, id)
	}
	frame := Frame{ID: id, Values: make(map[string]json.RawMessage)}
	if opts != nil {
		raw, err := json.Marshal(opts)
		if err != nil {
			return TurnResult{}, fmt.Errorf("dialog: encode options for %q: %w", id, err)
		}
		frame.Options = raw
	}
	dc.state.Stack = append(dc.state.Stack, frame)
	res, err := d.Begin(ctx, dc)
	if perr := dc.persist(ctx); perr != nil && err == nil {
		err = perr
	}
	return res, err
}

// Continue resumes the active dialog with this turn's input. An empty stack
// yields StatusEmpty rather than an error.
func (dc *Context) Continue(ctx context.Context) (TurnResult, error) {
	frame := dc.ActiveDialog()
	if frame == nil {
		return TurnResult{Status: StatusEmpty}, nil
	}
	d, ok := dc.set.Find(frame.ID)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: active frame %q", ErrUnknownDialog, frame.ID)
	}
	res, err := d.Continue(ctx, dc)
	if perr := dc.persist(ctx); perr != nil && err == nil {
		err = perr
	}
	return res, err
}

// Replace pops the active frame (if any) and begins the target dialog in its
// place. Begin and Continue are mutually exclusive within one turn; Replace
// is the sanctioned way to jump dialogs mid-stack.
func (dc *Context) Replace(ctx context.Context, id ID, opts any) (TurnResult, error) {
	if len(dc.state.Stack) > 0 {
		dc.state.Stack = dc.state.Stack[:len(dc.state.Stack)-1]
	}
	return dc.Begin(ctx, id, opts)
}

// Reprompt re-sends the active dialog's last prompt, when it has one.
func (dc *Context) Reprompt(ctx context.Context) error {
	frame := dc.ActiveDialog()
	if frame == nil {
		return ErrNoActiveDialog
	}
	d, ok := dc.set.Find(frame.ID)
	if !ok {
		return fmt.Errorf("%w: active frame %q", ErrUnknownDialog, frame.ID)
	}
	if rp, ok := d.(Reprompter); ok {
		return rp.Reprompt(ctx, dc)
	}
	return nil
}

// CancelAll clears the stack.
func (dc *Context) CancelAll(ctx context.Context) error {
	dc.state.Stack = nil
	return dc.persist(ctx)
}

// End pops the active frame. When a parent frame remains, the parent dialog
// is resumed with the child's result; otherwise the turn completes.
func (dc *Context) End(ctx context.Context, result any) (TurnResult, error) {
	if len(dc.state.Stack) == 0 {
		return TurnResult{Status: StatusComplete, Result: result}, nil
	}
	dc.state.Stack = dc.state.Stack[:len(dc.state.Stack)-1]
	parent := dc.ActiveDialog()
	if parent == nil {
		return TurnResult{Status: StatusComplete, Result: result}, nil
	}
	d, ok := dc.set.Find(parent.ID)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: parent frame %q", ErrUnknownDialog, parent.ID)
	}
	return d.Resume(ctx, dc, result)
}
