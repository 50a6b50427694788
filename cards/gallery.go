package cards

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mdrichardson/testerBot/activity"
)

//go:embed resources/adaptive_card.json resources/gallery.yaml
var resources embed.FS

// Gallery holds the media sources and shared action set the demo cards are
// built from, loaded from the embedded YAML resource.
type Gallery struct {
	Media struct {
		Animation   string `yaml:"animation"`
		Audio       string `yaml:"audio"`
		Video       string `yaml:"video"`
		Image       string `yaml:"image"`
		ReceiptItem string `yaml:"receipt_item"`
	} `yaml:"media"`
	SigninURL string   `yaml:"signin_url"`
	TapURL    string   `yaml:"tap_url"`
	Actions   []Action `yaml:"actions"`
}

var (
	galleryOnce sync.Once
	gallery     Gallery
	galleryErr  error
)

func LoadGallery() (Gallery, error) {
	galleryOnce.Do(func() {
		data, err := resources.ReadFile("resources/gallery.yaml")
		if err != nil {
			galleryErr = fmt.Errorf("cards: read gallery resource: %w", err)
			return
		}
		if err := yaml.Unmarshal(data, &gallery); err != nil {
			galleryErr = fmt.Errorf("cards: decode gallery resource: %w", err)
		}
	})
	return gallery, galleryErr
}

// Adaptive returns the embedded adaptive-card demo payload.
func Adaptive() (activity.Attachment, error) {
	data, err := resources.ReadFile("resources/adaptive_card.json")
	if err != nil {
		return activity.Attachment{}, fmt.Errorf("cards: read adaptive card resource: %w", err)
	}
	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return activity.Attachment{}, fmt.Errorf("cards: decode adaptive card resource: %w", err)
	}
	return activity.Attachment{ContentType: ContentTypeAdaptive, Content: content}, nil
}
