package hubclient

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// GenerateRequest describes one video generation submission.
type GenerateRequest struct {
	Prompt   string
	Duration int
	Platform string
	Format   string
	// ImageURL optionally references a hosted image for image-to-video
	// generation.
	ImageURL string
	// Image optionally supplies a local image instead. Encoded as a
	// base64 data URL in the request payload.
	Image     []byte
	ImageMIME string
}

type generatePayload struct {
	Prompt    string `json:"prompt"`
	Duration  int    `json:"duration,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Format    string `json:"format,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	ImageFile string `json:"imageFile,omitempty"`
}

func (r GenerateRequest) payload() generatePayload {
	p := generatePayload{
		Prompt:   strings.TrimSpace(r.Prompt),
		Duration: r.Duration,
		Platform: r.Platform,
		Format:   r.Format,
		ImageURL: r.ImageURL,
	}
	if len(r.Image) > 0 {
		mime := r.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		p.ImageFile = fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(r.Image))
	}
	return p
}
