// Package bot is the turn router: for each inbound activity it consults the
// recognizer, applies the interruption policy, and drives the conversation's
// dialog stack so that exactly one routing action happens per turn.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/recognizer"
	"github.com/mdrichardson/testerBot/state"
)

// InterruptIntents names the recognizer labels that pre-empt normal dialog
// continuation. Environment-specific; configured, not inferred.
type InterruptIntents struct {
	Cancel string
	Help   string
}

type Config struct {
	// MenuDialogID is the top-level test menu begun on welcome and after a
	// cancel interruption.
	MenuDialogID dialog.ID
	// DetailDialogID is the short-circuit target: when DetailIntent scores
	// at or above DetailThreshold, the active dialog is replaced with this
	// one and the recognition result is passed as its options.
	DetailDialogID  dialog.ID
	DetailIntent    string
	DetailThreshold float64
	Interrupts      InterruptIntents
	// MenuOptions and DetailOptions build the typed options each target
	// dialog expects, keeping the router decoupled from leaf option types.
	MenuOptions   func(sessionID string, ref activity.Reference) any
	DetailOptions func(res *recognizer.Result) any
}

func (c Config) validate() error {
	if err := c.MenuDialogID.Validate(); err != nil {
		return fmt.Errorf("bot: menu dialog id: %w", err)
	}
	if err := c.DetailDialogID.Validate(); err != nil {
		return fmt.Errorf("bot: detail dialog id: %w", err)
	}
	if c.DetailIntent == "" {
		return errors.New("bot: detail intent is required")
	}
	if c.DetailThreshold <= 0 || c.DetailThreshold > 1 {
		return fmt.Errorf("bot: detail threshold %v out of range (0,1]", c.DetailThreshold)
	}
	if c.Interrupts.Cancel == "" || c.Interrupts.Help == "" {
		return errors.New("bot: interrupt intent labels are required")
	}
	if c.MenuOptions == nil || c.DetailOptions == nil {
		return errors.New("bot: menu and detail option builders are required")
	}
	return nil
}

type Bot struct {
	cfg       Config
	dialogs   *dialog.Set
	rec       recognizer.Client
	convState *state.BotState
	userState *state.BotState
	logger    *slog.Logger

	// sessionID scopes this process's proactive job records; generated once
	// at construction like the rest of the session identity.
	sessionID string
}

func New(cfg Config, dialogs *dialog.Set, rec recognizer.Client, convState, userState *state.BotState, logger *slog.Logger) (*Bot, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dialogs == nil {
		return nil, errors.New("bot: dialog set is required")
	}
	if rec == nil {
		return nil, errors.New("bot: recognizer client is required")
	}
	if convState == nil || userState == nil {
		return nil, errors.New("bot: conversation and user state are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		cfg:       cfg,
		dialogs:   dialogs,
		rec:       rec,
		convState: convState,
		userState: userState,
		logger:    logger,
		sessionID: NewSessionID(),
	}, nil
}

// NewSessionID returns a 5-character lowercase identifier.
func NewSessionID() string {
	id := make([]byte, 5)
	for i := range id {
		id[i] = byte('a' + rand.IntN(25))
	}
	return string(id)
}

func (b *Bot) SessionID() string { return b.sessionID }

// OnTurn routes one inbound turn. State for both partitions is persisted
// when the routing logic returns, including on error.
func (b *Bot) OnTurn(ctx context.Context, tc *channel.TurnContext) (err error) {
	defer func() {
		err = errors.Join(err,
			b.convState.SaveChanges(ctx, tc),
			b.userState.SaveChanges(ctx, tc))
	}()

	dc, err := b.dialogs.CreateContext(ctx, tc)
	if err != nil {
		return err
	}

	switch tc.Activity().Kind {
	case activity.KindMessage:
		return b.routeMessage(ctx, tc, dc)
	case activity.KindConversationUpdate:
		return b.welcome(ctx, tc, dc)
	default:
		return nil
	}
}

func (b *Bot) routeMessage(ctx context.Context, tc *channel.TurnContext, dc *dialog.Context) error {
	act := tc.Activity()

	// Recognizer errors fail open: the turn proceeds as if nothing was
	// recognized.
	res, err := b.rec.Recognize(ctx, act.Text)
	if err != nil {
		b.logger.Warn("recognizer_failed", "conversation_id", act.Conversation.ID, "error", err)
		res = nil
	}
	topIntent, topScore := res.TopIntent()

	interrupted, err := b.isTurnInterrupted(ctx, dc, topIntent)
	if err != nil {
		return err
	}
	if interrupted {
		if dc.ActiveDialog() != nil {
			// Help-style interruption: re-send the active prompt.
			return dc.Reprompt(ctx)
		}
		// Cancel cleared the stack (or nothing was running); restart at
		// the top-level menu.
		_, err := dc.Begin(ctx, b.cfg.MenuDialogID, nil)
		return err
	}

	if err := b.echoPostback(ctx, tc); err != nil {
		return err
	}

	var result dialog.TurnResult
	if res != nil && topIntent == b.cfg.DetailIntent && topScore >= b.cfg.DetailThreshold {
		// A confidently recognized detail intent short-circuits the stack
		// straight into the detail dialog with the recognition attached.
		result, err = dc.Replace(ctx, b.cfg.DetailDialogID, b.cfg.DetailOptions(res))
	} else {
		result, err = dc.Continue(ctx)
	}
	if err != nil {
		return err
	}

	if !tc.Responded() {
		switch result.Status {
		case dialog.StatusEmpty:
			return tc.SendText(ctx, "I don't understand that. Try one of the menu options, or say \"help\".")
		default:
			// A dialog claims to have run but produced no response.
			// Reset the stack so the next turn starts clean.
			b.logger.Warn("dialog_stack_reset",
				"conversation_id", act.Conversation.ID,
				"status", string(result.Status))
			return dc.CancelAll(ctx)
		}
	}
	return nil
}

// isTurnInterrupted applies the interruption policy: cancel clears the stack
// (when one is active) and acknowledges; help sends a usage hint. Both
// side-effects happen here, at most one acknowledgment per call.
func (b *Bot) isTurnInterrupted(ctx context.Context, dc *dialog.Context, topIntent string) (bool, error) {
	switch topIntent {
	case b.cfg.Interrupts.Cancel:
		if dc.ActiveDialog() != nil {
			if err := dc.CancelAll(ctx); err != nil {
				return false, err
			}
		}
		if err := dc.Turn().SendText(ctx, "Cancelling active dialogs..."); err != nil {
			return false, err
		}
		return true, nil
	case b.cfg.Interrupts.Help:
		if err := dc.Turn().SendText(ctx, "Pick one of the menu options to run a test, or say \"cancel\" to stop the current one."); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// echoPostback surfaces postback payloads, which channels normally hide, for
// debugging.
func (b *Bot) echoPostback(ctx context.Context, tc *channel.TurnContext) error {
	act := tc.Activity()
	postback, ok := act.ChannelData["postback"].(bool)
	if !ok || !postback {
		return nil
	}
	payload := act.Value
	if payload == nil {
		payload = act.Text
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bot: marshal postback payload: %w", err)
	}
	return tc.SendText(ctx, fmt.Sprintf("You sent this input, which is normally hidden:\n%s", raw))
}

// welcome greets every added member except the bot itself, then starts the
// top-level menu with this session's proactive correlation options.
func (b *Bot) welcome(ctx context.Context, tc *channel.TurnContext, dc *dialog.Context) error {
	act := tc.Activity()
	for _, member := range act.MembersAdded {
		if member.ID == act.Recipient.ID {
			continue
		}
		locale := act.Locale
		if locale == "" {
			locale = "None"
		}
		info := fmt.Sprintf(
			"Username: %s\nID: %s\nChannel: %s\nLocale: %s\nConversation ID: %s\nService URL: %s",
			member.Name, member.ID, act.ChannelID, locale, act.Conversation.ID, act.ServiceURL)
		if err := tc.SendText(ctx, "Welcome! Here's what I know about you:\n"+info); err != nil {
			return err
		}
		ref := activity.ReferenceFrom(act)
		if _, err := dc.Replace(ctx, b.cfg.MenuDialogID, b.cfg.MenuOptions(b.sessionID, ref)); err != nil {
			return err
		}
	}
	return nil
}
