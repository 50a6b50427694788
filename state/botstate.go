package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
)

type partition string

const (
	partitionConversation partition = "conversation"
	partitionUser         partition = "user"
)

// BotState is one logical partition of durable state (conversation- or
// user-scoped). Reads are cached on the turn context; SaveChanges flushes
// the cache back through the storage collaborator at the end of the turn.
type BotState struct {
	storage   Storage
	partition partition
}

func NewConversationState(storage Storage) (*BotState, error) {
	return newBotState(storage, partitionConversation)
}

func NewUserState(storage Storage) (*BotState, error) {
	return newBotState(storage, partitionUser)
}

func newBotState(storage Storage, p partition) (*BotState, error) {
	if storage == nil {
		return nil, fmt.Errorf("state: storage is required")
	}
	return &BotState{storage: storage, partition: p}, nil
}

func (b *BotState) storageKey(act *activity.Activity) (string, error) {
	if act == nil {
		return "", fmt.Errorf("state: activity is required")
	}
	switch b.partition {
	case partitionConversation:
		if act.Conversation.ID == "" {
			return "", fmt.Errorf("state: conversation.id is required for conversation state")
		}
		return fmt.Sprintf("%s/conversations/%s", act.ChannelID, act.Conversation.ID), nil
	case partitionUser:
		if act.From.ID == "" {
			return "", fmt.Errorf("state: from.id is required for user state")
		}
		return fmt.Sprintf("%s/users/%s", act.ChannelID, act.From.ID), nil
	default:
		return "", fmt.Errorf("state: unknown partition %q", b.partition)
	}
}

func (b *BotState) cacheKey() string {
	return "state." + string(b.partition)
}

type cachedState struct {
	entries map[string]json.RawMessage
	etag    string
	dirty   bool
}

func (b *BotState) load(ctx context.Context, tc *channel.TurnContext) (*cachedState, error) {
	if v, ok := tc.Value(b.cacheKey()); ok {
		return v.(*cachedState), nil
	}
	key, err := b.storageKey(tc.Activity())
	if err != nil {
		return nil, err
	}
	items, err := b.storage.Read(ctx, []string{key})
	if err != nil {
		return nil, fmt.Errorf("state: load %s: %w", key, err)
	}
	cs := &cachedState{entries: make(map[string]json.RawMessage)}
	if item, ok := items[key]; ok {
		if err := json.Unmarshal(item.Value, &cs.entries); err != nil {
			return nil, fmt.Errorf("state: decode %s: %w", key, err)
		}
		cs.etag = item.ETag
	}
	tc.SetValue(b.cacheKey(), cs)
	return cs, nil
}

// SaveChanges persists the partition if any property changed this turn. The
// write carries the entity tag the state was read with, or ETagAny for a
// record that did not exist yet.
func (b *BotState) SaveChanges(ctx context.Context, tc *channel.TurnContext) error {
	v, ok := tc.Value(b.cacheKey())
	if !ok {
		return nil
	}
	cs := v.(*cachedState)
	if !cs.dirty {
		return nil
	}
	key, err := b.storageKey(tc.Activity())
	if err != nil {
		return err
	}
	value, err := json.Marshal(cs.entries)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	etag := cs.etag
	if etag == "" {
		etag = ETagAny
	}
	if err := b.storage.Write(ctx, map[string]Item{key: {Value: value, ETag: etag}}); err != nil {
		return fmt.Errorf("state: save %s: %w", key, err)
	}
	cs.dirty = false
	if cs.etag, err = computeETag(value); err != nil {
		return err
	}
	return nil
}

// Property is a named accessor into one BotState partition.
type Property struct {
	bs   *BotState
	name string
}

func (b *BotState) Property(name string) (*Property, error) {
	if name == "" {
		return nil, fmt.Errorf("state: property name is required")
	}
	return &Property{bs: b, name: name}, nil
}

// Get decodes the property into out, reporting whether it was present.
func (p *Property) Get(ctx context.Context, tc *channel.TurnContext, out any) (bool, error) {
	cs, err := p.bs.load(ctx, tc)
	if err != nil {
		return false, err
	}
	raw, ok := cs.entries[p.name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode property %s: %w", p.name, err)
	}
	return true, nil
}

func (p *Property) Set(ctx context.Context, tc *channel.TurnContext, v any) error {
	cs, err := p.bs.load(ctx, tc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state: encode property %s: %w", p.name, err)
	}
	cs.entries[p.name] = raw
	cs.dirty = true
	return nil
}

func (p *Property) Delete(ctx context.Context, tc *channel.TurnContext) error {
	cs, err := p.bs.load(ctx, tc)
	if err != nil {
		return err
	}
	if _, ok := cs.entries[p.name]; ok {
		delete(cs.entries, p.name)
		cs.dirty = true
	}
	return nil
}
