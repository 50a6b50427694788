// Package cards builds the rich-card attachment payloads exercised by the
// rich-card demo dialog.
package cards

import (
	"github.com/mdrichardson/testerBot/activity"
)

const (
	ContentTypeHero      = "application/vnd.microsoft.card.hero"
	ContentTypeThumbnail = "application/vnd.microsoft.card.thumbnail"
	ContentTypeReceipt   = "application/vnd.microsoft.card.receipt"
	ContentTypeSignin    = "application/vnd.microsoft.card.signin"
	ContentTypeAnimation = "application/vnd.microsoft.card.animation"
	ContentTypeAudio     = "application/vnd.microsoft.card.audio"
	ContentTypeVideo     = "application/vnd.microsoft.card.video"
	ContentTypeAdaptive  = "application/vnd.microsoft.card.adaptive"
)

type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type MediaURL struct {
	URL string `json:"url"`
}

type HeroCard struct {
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Text     string   `json:"text,omitempty"`
	Images   []Image  `json:"images,omitempty"`
	Buttons  []Action `json:"buttons,omitempty"`
	Tap      *Action  `json:"tap,omitempty"`
}

type MediaCard struct {
	Title    string     `json:"title,omitempty"`
	Subtitle string     `json:"subtitle,omitempty"`
	Text     string     `json:"text,omitempty"`
	Media    []MediaURL `json:"media,omitempty"`
	Buttons  []Action   `json:"buttons,omitempty"`
}

type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ReceiptItem struct {
	Title    string  `json:"title,omitempty"`
	Subtitle string  `json:"subtitle,omitempty"`
	Text     string  `json:"text,omitempty"`
	Price    string  `json:"price,omitempty"`
	Quantity string  `json:"quantity,omitempty"`
	Image    *Image  `json:"image,omitempty"`
	Tap      *Action `json:"tap,omitempty"`
}

type ReceiptCard struct {
	Title   string        `json:"title,omitempty"`
	Facts   []Fact        `json:"facts,omitempty"`
	Items   []ReceiptItem `json:"items,omitempty"`
	Tax     string        `json:"tax,omitempty"`
	VAT     string        `json:"vat,omitempty"`
	Total   string        `json:"total,omitempty"`
	Buttons []Action      `json:"buttons,omitempty"`
	Tap     *Action       `json:"tap,omitempty"`
}

type SigninCard struct {
	Text    string   `json:"text,omitempty"`
	Buttons []Action `json:"buttons,omitempty"`
}

func Hero(card HeroCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeHero, Content: card}
}

// Thumbnail shares the hero payload shape under its own content type.
func Thumbnail(card HeroCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeThumbnail, Content: card}
}

func Animation(card MediaCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeAnimation, Content: card}
}

func Audio(card MediaCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeAudio, Content: card}
}

func Video(card MediaCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeVideo, Content: card}
}

func Receipt(card ReceiptCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeReceipt, Content: card}
}

func Signin(card SigninCard) activity.Attachment {
	return activity.Attachment{ContentType: ContentTypeSignin, Content: card}
}
