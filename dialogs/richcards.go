package dialogs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/cards"
	"github.com/mdrichardson/testerBot/dialog"
)

const richCardsDisplay dialog.ID = "richCards.display"

var richCardsChoices = []string{
	"Adaptive", "Animation", "Audio", "Hero",
	"Thumbnail", "Receipt", "Sign In", "Video", choiceBack,
}

// cardOptions carries the built card into the display sub-flow.
type cardOptions struct {
	Name       string              `json:"name"`
	Attachment activity.Attachment `json:"attachment"`
}

type richCardsDialog struct {
	logger *slog.Logger
}

func registerRichCards(set *dialog.Set, deps Dependencies) error {
	r := &richCardsDialog{logger: deps.Logger}
	if err := addWaterfall(set, RichCardsID, []dialog.WaterfallStep{
		r.promptForCard,
		r.displaySelectedCard,
		r.restart,
	}); err != nil {
		return err
	}
	return addWaterfall(set, richCardsDisplay, []dialog.WaterfallStep{r.displayCards})
}

func (r *richCardsDialog) promptForCard(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Prompt(ctx, promptChoice, menuPrompt("Rich Card", richCardsChoices))
}

func (r *richCardsDialog) displaySelectedCard(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	selection := resultString(step)
	if selection == "" || selection == choiceBack {
		return step.EndDialog(ctx, nil)
	}
	attachment, err := buildCard(selection)
	if err != nil {
		return dialog.TurnResult{}, err
	}
	r.logger.Info("test_started", "test", "rich card", "card", selection)
	return step.Begin(ctx, richCardsDisplay, cardOptions{Name: selection, Attachment: attachment})
}

func (r *richCardsDialog) restart(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	return step.Replace(ctx, RichCardsID, nil)
}

// displayCards renders the card three ways: single, list layout, carousel.
func (r *richCardsDialog) displayCards(ctx context.Context, step *dialog.WaterfallStepContext) (dialog.TurnResult, error) {
	var opts cardOptions
	if ok, err := step.Options(&opts); err != nil {
		return dialog.TurnResult{}, err
	} else if !ok {
		return dialog.TurnResult{}, fmt.Errorf("dialogs: card display requires card options")
	}
	card := opts.Attachment
	single := &activity.Activity{
		Text:        fmt.Sprintf("%s Card - Single", opts.Name),
		Attachments: []activity.Attachment{card},
	}
	list := &activity.Activity{
		Text:             fmt.Sprintf("%s Card - List", opts.Name),
		Attachments:      []activity.Attachment{card, card},
		AttachmentLayout: activity.LayoutList,
	}
	carousel := &activity.Activity{
		Text:             fmt.Sprintf("%s Card - Carousel", opts.Name),
		Attachments:      []activity.Attachment{card, card, card},
		AttachmentLayout: activity.LayoutCarousel,
	}
	if err := step.Context().Turn().SendActivities(ctx, single, list, carousel); err != nil {
		return dialog.TurnResult{}, err
	}
	r.logger.Info("test_completed", "test", "rich card", "card", opts.Name)
	return step.EndDialog(ctx, nil)
}

func buildCard(name string) (activity.Attachment, error) {
	if name == "Adaptive" {
		return cards.Adaptive()
	}
	g, err := cards.LoadGallery()
	if err != nil {
		return activity.Attachment{}, err
	}
	tap := &cards.Action{Type: "openUrl", Title: "Tap", Value: g.TapURL}
	switch name {
	case "Animation":
		return cards.Animation(cards.MediaCard{
			Title:    "Animation Card",
			Subtitle: "Test",
			Media:    []cards.MediaURL{{URL: g.Media.Animation}},
			Buttons:  g.Actions,
		}), nil
	case "Audio":
		return cards.Audio(cards.MediaCard{
			Title:    "Audio Card",
			Subtitle: "Test",
			Media:    []cards.MediaURL{{URL: g.Media.Audio}},
			Buttons:  g.Actions,
		}), nil
	case "Video":
		return cards.Video(cards.MediaCard{
			Title:    "Video Card",
			Subtitle: "subtitle",
			Text:     "text",
			Media:    []cards.MediaURL{{URL: g.Media.Video}},
			Buttons:  g.Actions,
		}), nil
	case "Hero":
		return cards.Hero(cards.HeroCard{
			Title:    "Hero Card",
			Subtitle: "Test",
			Images:   []cards.Image{{URL: g.Media.Image}},
			Buttons:  g.Actions,
		}), nil
	case "Thumbnail":
		return cards.Thumbnail(cards.HeroCard{
			Title:    "Thumbnail Card",
			Subtitle: "Test",
			Images:   []cards.Image{{URL: g.Media.Image}},
			Buttons:  g.Actions,
		}), nil
	case "Receipt":
		return cards.Receipt(cards.ReceiptCard{
			Title: "Receipt Card",
			Facts: []cards.Fact{{Key: "Fact 1", Value: "1"}, {Key: "Fact 2", Value: "2"}},
			Items: []cards.ReceiptItem{
				{
					Title: "Item 1", Subtitle: "subtitle 1", Text: "text 1",
					Price: "$1.00", Quantity: "1",
					Image: &cards.Image{URL: g.Media.ReceiptItem},
					Tap:   tap,
				},
				{
					Title: "Item 2", Subtitle: "subtitle 2", Text: "text 2",
					Price: "$200.20", Quantity: "20",
					Image: &cards.Image{URL: g.Media.ReceiptItem},
					Tap:   tap,
				},
			},
			Tax:     "$5.00",
			VAT:     "vat",
			Total:   "$99999.99",
			Buttons: g.Actions,
			Tap:     tap,
		}), nil
	case "Sign In":
		return cards.Signin(cards.SigninCard{
			Text: "Sign In Card",
			Buttons: []cards.Action{
				{Type: "signin", Title: "Sign In", Value: g.SigninURL},
			},
		}), nil
	default:
		return activity.Attachment{}, fmt.Errorf("dialogs: unknown card %q", name)
	}
}
