// Package gallery loads the image list from the endpoint and turns it into a
// page of cards.
package gallery

import (
	"context"

	"github.com/cnosuke/sheet-gallery/fetcher"
	"go.uber.org/zap"
)

// State of a single gallery load.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrorKind classifies page-level failures.
type ErrorKind int

const (
	NoError ErrorKind = iota
	TransportError
	ParseError
	ApplicationError
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return ""
	case TransportError:
		return "transport"
	case ParseError:
		return "parse"
	case ApplicationError:
		return "application"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	transportErrorPrefix   = "Failed to load images. "
	applicationErrorPrefix = "Error: "
)

// Container holds the rendered cards, or the empty-state message.
type Container struct {
	Cards   []Card `json:"cards"`
	Message string `json:"message,omitempty"`
}

// Indicator is a page element toggled between hidden and visible.
type Indicator struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text,omitempty"`
}

// Page is the outcome of one load: the card container plus the loading
// indicator and the error panel.
type Page struct {
	State     State     `json:"state"`
	ErrKind   ErrorKind `json:"error_kind,omitempty"`
	Container Container `json:"container"`
	Loading   Indicator `json:"loading"`
	Error     Indicator `json:"error"`
}

// NewPage returns the page as it looks before loading starts.
func NewPage() *Page {
	return &Page{
		State:     StateIdle,
		Container: Container{Cards: []Card{}},
		Loading:   Indicator{Visible: true},
	}
}

func (p *Page) fail(kind ErrorKind, text string) {
	p.Loading.Visible = false
	p.State = StateError
	p.ErrKind = kind
	p.Error = Indicator{Visible: true, Text: text}
}

// Options tune a Loader.
type Options struct {
	// ProbeImages checks every image URL before rendering and swaps in the
	// placeholder for those that fail.
	ProbeImages bool
}

// Loader fetches the endpoint and builds a Page. It keeps no state between loads.
type Loader struct {
	fetcher  fetcher.Fetcher
	endpoint string
	opts     Options
}

// NewLoader creates a Loader for endpoint.
func NewLoader(f fetcher.Fetcher, endpoint string, opts Options) *Loader {
	return &Loader{
		fetcher:  f,
		endpoint: endpoint,
		opts:     opts,
	}
}

// Load runs one fetch-then-render pass. Every failure is terminal for the
// returned page; nothing is retried.
func (l *Loader) Load(ctx context.Context) *Page {
	page := NewPage()
	page.State = StateLoading

	resp, err := l.fetcher.Fetch(ctx, l.endpoint)
	if err != nil {
		zap.S().Errorw("fetch error", "endpoint", l.endpoint, "error", err)
		page.fail(TransportError, transportErrorPrefix+err.Error())
		return page
	}
	if resp.OriginalURL != "" {
		zap.S().Infow("endpoint redirected",
			"original_url", resp.OriginalURL,
			"url", resp.URL)
	}

	payload, err := DecodePayload(resp.Body)
	if err != nil {
		zap.S().Errorw("fetch error", "endpoint", l.endpoint, "error", err)
		page.fail(ParseError, transportErrorPrefix+err.Error())
		return page
	}

	page.Loading.Visible = false

	if payload.IsError() {
		zap.S().Errorw("endpoint returned error", "endpoint", l.endpoint, "message", payload.Message)
		page.fail(ApplicationError, applicationErrorPrefix+payload.Message)
		return page
	}

	zap.S().Debugw("fetched image data",
		"url", resp.URL,
		"content_type", resp.ContentType,
		"count", len(payload.Images))

	page.State = StateSuccess
	if len(payload.Images) == 0 {
		page.Container.Message = EmptyMessage
		return page
	}

	page.Container.Cards = BuildCards(payload.Images)
	if l.opts.ProbeImages {
		l.probe(ctx, page.Container.Cards)
	}
	return page
}

func (l *Loader) probe(ctx context.Context, cards []Card) {
	urls := make([]string, len(cards))
	for i := range cards {
		urls[i] = cards[i].Image.Src
	}

	results := l.fetcher.Probe(ctx, urls)
	for i, res := range results {
		if i >= len(cards) || res == nil || res.OK() {
			continue
		}
		zap.S().Debugw("image failed to load",
			"url", res.URL,
			"status", res.StatusCode,
			"error", res.Err)
		cards[i].MarkFailed()
	}
}
