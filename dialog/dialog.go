// Package dialog implements the per-conversation dialog stack: an ordered
// set of active dialog frames supporting begin, continue, replace-top,
// reprompt-top, and cancel-all, with state persisted through the
// conversation-scoped store between turns.
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ID is a symbolic dialog identifier. Dialogs are always addressed by id so
// frames can be serialized between turns.
type ID string

func (id ID) Validate() error {
	if id == "" {
		return errors.New("dialog: id is required")
	}
	return nil
}

type TurnStatus string

const (
	// StatusEmpty means no dialog was active to continue.
	StatusEmpty TurnStatus = "empty"
	// StatusWaiting means the active dialog is awaiting user input.
	StatusWaiting TurnStatus = "waiting"
	// StatusComplete means the active dialog finished this turn.
	StatusComplete TurnStatus = "complete"
	// StatusCancelled means the stack was cancelled this turn.
	StatusCancelled TurnStatus = "cancelled"
)

type TurnResult struct {
	Status TurnStatus
	Result any
}

var (
	ErrUnknownDialog  = errors.New("dialog: unknown dialog id")
	ErrNoActiveDialog = errors.New("dialog: no active dialog")
)

type Dialog interface {
	ID() ID
	// Begin starts the dialog on a freshly pushed frame. Options were
	// serialized into the frame before the call.
	Begin(ctx context.Context, dc *Context) (TurnResult, error)
	// Continue resumes the dialog with the current turn's input.
	Continue(ctx context.Context, dc *Context) (TurnResult, error)
	// Resume re-enters the dialog after a child it began has ended.
	Resume(ctx context.Context, dc *Context, result any) (TurnResult, error)
}

// Reprompter is implemented by dialogs that can re-send their last prompt.
type Reprompter interface {
	Reprompt(ctx context.Context, dc *Context) error
}

// Frame is one serialized dialog instance on the stack. The innermost frame
// is the active dialog.
type Frame struct {
	ID      ID                         `json:"id"`
	Step    int                        `json:"step"`
	Options json.RawMessage            `json:"options,omitempty"`
	Values  map[string]json.RawMessage `json:"values,omitempty"`
}

// DecodeOptions unmarshals the frame's options, reporting whether any were
// attached when the frame was begun.
func (f *Frame) DecodeOptions(out any) (bool, error) {
	if len(f.Options) == 0 || string(f.Options) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(f.Options, out); err != nil {
		return false, fmt.Errorf("dialog: decode options for %s: %w", f.ID, err)
	}
	return true, nil
}

// State is the persisted dialog stack for one conversation.
type State struct {
	Stack []Frame `json:"stack"`
}
