package gallery

import (
	"github.com/cnosuke/sheet-gallery/types"
)

const (
	// DefaultAlt is used as alt text when a record has no caption.
	DefaultAlt = "Image from Google Sheet"
	// DefaultCaption is shown under an image that has no caption.
	DefaultCaption = "No Caption Provided"
	// PlaceholderImageURL replaces the source of an image that failed to load.
	PlaceholderImageURL = "https://placehold.co/600x400/cccccc/333333?text=Image+Load+Error"
	// FailedAlt replaces the alt text of an image that failed to load.
	FailedAlt = "Image failed to load"
	// EmptyMessage fills the container when the endpoint returns no records.
	EmptyMessage = "No images found in the Google Sheet. Please add data."

	// ReferrerPolicy keeps image hosts with hotlink protection from rejecting requests.
	ReferrerPolicy = "no-referrer"
	// LinkTarget opens links in a new browsing context.
	LinkTarget = "_blank"
	// LinkRel stops the opened page from reaching the opener or seeing the referrer.
	LinkRel = "noopener noreferrer"
)

// Image is the image node of a card.
type Image struct {
	Src            string `json:"src"`
	Alt            string `json:"alt"`
	ReferrerPolicy string `json:"referrer_policy"`
	FallbackSrc    string `json:"fallback_src"`
	FallbackAlt    string `json:"fallback_alt"`
	Failed         bool   `json:"failed,omitempty"`
}

// Link is the optional anchor wrapping image and caption.
type Link struct {
	Href   string `json:"href"`
	Target string `json:"target"`
	Rel    string `json:"rel"`
}

// Card is the rendered unit for one record. When Link is nil the image and
// caption are direct children of the card.
type Card struct {
	Image   Image  `json:"image"`
	Caption string `json:"caption"`
	Link    *Link  `json:"link,omitempty"`
}

// BuildCard maps a record to its card. It has no side effects.
func BuildCard(rec types.ImageRecord) Card {
	alt := rec.Caption
	if alt == "" {
		alt = DefaultAlt
	}
	caption := rec.Caption
	if caption == "" {
		caption = DefaultCaption
	}

	card := Card{
		Image: Image{
			Src:            rec.ImageURL,
			Alt:            alt,
			ReferrerPolicy: ReferrerPolicy,
			FallbackSrc:    PlaceholderImageURL,
			FallbackAlt:    FailedAlt,
		},
		Caption: caption,
	}

	if rec.Link != "" {
		card.Link = &Link{
			Href:   rec.Link,
			Target: LinkTarget,
			Rel:    LinkRel,
		}
	}
	return card
}

// BuildCards builds one card per record, keeping order.
func BuildCards(recs []types.ImageRecord) []Card {
	cards := make([]Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, BuildCard(rec))
	}
	return cards
}

// MarkFailed swaps in the placeholder after the image could not be loaded.
func (c *Card) MarkFailed() {
	c.Image.Src = c.Image.FallbackSrc
	c.Image.Alt = c.Image.FallbackAlt
	c.Image.Failed = true
}
