package activity

import "fmt"

// Reference is an opaque, serializable handle to a conversation. The routing
// core never inspects it; it only stores it and hands it back to the channel
// adapter to resume the conversation out-of-band.
type Reference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	User         ChannelAccount      `json:"user"`
	Bot          ChannelAccount      `json:"bot"`
	Conversation ConversationAccount `json:"conversation"`
	ChannelID    string              `json:"channelId"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	Locale       string              `json:"locale,omitempty"`
}

// ReferenceFrom captures a reference from an inbound activity.
func ReferenceFrom(a *Activity) Reference {
	if a == nil {
		return Reference{}
	}
	return Reference{
		ActivityID:   a.ID,
		User:         a.From,
		Bot:          a.Recipient,
		Conversation: a.Conversation,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Locale:       a.Locale,
	}
}

func (r Reference) Validate() error {
	if r.Conversation.ID == "" {
		return fmt.Errorf("reference conversation.id is required")
	}
	if r.ChannelID == "" {
		return fmt.Errorf("reference channelId is required")
	}
	return nil
}

// Apply rewrites an outbound activity so it is addressed to the referenced
// conversation, with the bot as sender and the stored user as recipient.
func (r Reference) Apply(a *Activity) {
	if a == nil {
		return
	}
	a.ChannelID = r.ChannelID
	a.ServiceURL = r.ServiceURL
	a.Conversation = r.Conversation
	a.From = r.Bot
	a.Recipient = r.User
	if a.Locale == "" {
		a.Locale = r.Locale
	}
	if a.ReplyToID == "" {
		a.ReplyToID = r.ActivityID
	}
}
