package types

// ImageRecord - One row of the image list returned by the endpoint
type ImageRecord struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Link     string `json:"link,omitempty"`
}

// PayloadKind discriminates the two shapes the endpoint can answer with.
type PayloadKind int

const (
	// PayloadImages - Success variant, an ordered (possibly empty) list of records
	PayloadImages PayloadKind = iota
	// PayloadError - Failure variant, an object carrying an error message
	PayloadError
)

// Payload - Decoded response body of the endpoint
type Payload struct {
	Kind    PayloadKind
	Images  []ImageRecord
	Message string
}

// IsError reports whether the endpoint signalled an application error.
func (p *Payload) IsError() bool {
	return p.Kind == PayloadError
}

// FetchResponse - Response from fetch operation
type FetchResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	StatusCode  int    `json:"status_code"`
	// OriginalURL is set only if a redirect occurred. It represents the initial URL before any redirects.
	OriginalURL string `json:"original_url,omitempty"`
}

// ProbeResult - Outcome of checking a single image URL
type ProbeResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	Err        error  `json:"-"`
}

// OK reports whether the image can be loaded.
func (r *ProbeResult) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}
