package dialog

import (
	"context"
	"fmt"

	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/state"
)

// Set is the registry of dialogs reachable by id, bound to the state
// property that persists each conversation's stack.
type Set struct {
	dialogs map[ID]Dialog
	prop    *state.Property
}

func NewSet(prop *state.Property) (*Set, error) {
	if prop == nil {
		return nil, fmt.Errorf("dialog: state property is required")
	}
	return &Set{dialogs: make(map[ID]Dialog), prop: prop}, nil
}

func (s *Set) Add(d Dialog) error {
	if d == nil {
		return fmt.Errorf("dialog: cannot add nil dialog")
	}
	if err := d.ID().Validate(); err != nil {
		return err
	}
	if _, exists := s.dialogs[d.ID()]; exists {
		return fmt.Errorf("dialog: duplicate id %q", d.ID())
	}
	s.dialogs[d.ID()] = d
	return nil
}

func (s *Set) Find(id ID) (Dialog, bool) {
	d, ok := s.dialogs[id]
	return d, ok
}

// CreateContext loads the conversation's dialog stack for this turn. The
// stack is written back through the property after every stack operation and
// persisted durably by the caller's end-of-turn state save.
func (s *Set) CreateContext(ctx context.Context, tc *channel.TurnContext) (*Context, error) {
	if tc == nil {
		return nil, fmt.Errorf("dialog: turn context is required")
	}
	var st State
	if _, err := s.prop.Get(ctx, tc, &st); err != nil {
		return nil, err
	}
	return &Context{set: s, tc: tc, state: &st}, nil
}
