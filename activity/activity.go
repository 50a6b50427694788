// Package activity defines the wire model for one conversational turn:
// inbound and outbound activities, channel accounts, attachments, and the
// serializable conversation reference used for proactive delivery.
package activity

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindMessage            Kind = "message"
	KindConversationUpdate Kind = "conversationUpdate"
	KindEvent              Kind = "event"
)

type AttachmentLayout string

const (
	LayoutList     AttachmentLayout = "list"
	LayoutCarousel AttachmentLayout = "carousel"
)

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ConversationAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Attachment struct {
	ContentType  string `json:"contentType"`
	ContentURL   string `json:"contentUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Name         string `json:"name,omitempty"`
	Content      any    `json:"content,omitempty"`
}

// Activity is one inbound event or outbound response in a conversation.
// Inbound activities are created by the channel adapter per request and are
// read-only to the router.
type Activity struct {
	Kind             Kind                `json:"type"`
	ID               string              `json:"id,omitempty"`
	Timestamp        time.Time           `json:"timestamp,omitzero"`
	ChannelID        string              `json:"channelId"`
	ServiceURL       string              `json:"serviceUrl,omitempty"`
	From             ChannelAccount      `json:"from"`
	Recipient        ChannelAccount      `json:"recipient,omitempty"`
	Conversation     ConversationAccount `json:"conversation"`
	Locale           string              `json:"locale,omitempty"`
	Text             string              `json:"text,omitempty"`
	Value            any                 `json:"value,omitempty"`
	ReplyToID        string              `json:"replyToId,omitempty"`
	Attachments      []Attachment        `json:"attachments,omitempty"`
	AttachmentLayout AttachmentLayout    `json:"attachmentLayout,omitempty"`
	MembersAdded     []ChannelAccount    `json:"membersAdded,omitempty"`
	MembersRemoved   []ChannelAccount    `json:"membersRemoved,omitempty"`
	ChannelData      map[string]any      `json:"channelData,omitempty"`
}

func NewMessage(text string) *Activity {
	return &Activity{Kind: KindMessage, Text: text}
}

func (a *Activity) Validate() error {
	if a == nil {
		return fmt.Errorf("activity is nil")
	}
	switch a.Kind {
	case KindMessage, KindConversationUpdate, KindEvent:
	default:
		return fmt.Errorf("activity type is invalid: %q", a.Kind)
	}
	if a.Conversation.ID == "" {
		return fmt.Errorf("conversation.id is required")
	}
	if a.ChannelID == "" {
		return fmt.Errorf("channelId is required")
	}
	return nil
}
