package filters

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// A Chain is an ordered list of named filters applied to an image.
// Filter specs use the form "name" or "name:value", e.g. "brightness:12"
// or "grayscale".
type Chain []Spec

// Spec is one parsed filter step.
type Spec struct {
	Name  string
	Value float64
}

var supported = map[string]bool{
	"brightness": true,
	"contrast":   true,
	"saturation": true,
	"blur":       true,
	"sharpen":    true,
	"grayscale":  true,
	"invert":     true,
}

// ParseChain parses raw filter specs into a Chain, rejecting unknown
// filter names and malformed values.
func ParseChain(raw []string) (Chain, error) {
	var chain Chain
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, valueText, hasValue := strings.Cut(item, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		if !supported[name] {
			return nil, fmt.Errorf("unsupported filter %q", name)
		}
		spec := Spec{Name: name}
		if hasValue {
			v, err := strconv.ParseFloat(strings.TrimSpace(valueText), 64)
			if err != nil {
				return nil, fmt.Errorf("filter %q: invalid value %q", name, valueText)
			}
			spec.Value = v
		}
		chain = append(chain, spec)
	}
	return chain, nil
}

// Apply runs every step of the chain over src in order.
func (c Chain) Apply(src image.Image) *image.NRGBA {
	out := imaging.Clone(src)
	for _, spec := range c {
		switch spec.Name {
		case "brightness":
			out = imaging.AdjustBrightness(out, spec.Value)
		case "contrast":
			out = imaging.AdjustContrast(out, spec.Value)
		case "saturation":
			out = imaging.AdjustSaturation(out, spec.Value)
		case "blur":
			if spec.Value > 0 {
				out = imaging.Blur(out, spec.Value)
			}
		case "sharpen":
			if spec.Value > 0 {
				out = imaging.Sharpen(out, spec.Value)
			}
		case "grayscale":
			out = imaging.Grayscale(out)
		case "invert":
			out = imaging.Invert(out)
		}
	}
	return out
}

// Encode serializes img in the requested format. Compression applies to
// JPEG quality only; PNG ignores it.
func Encode(img image.Image, format string, compression int) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		quality := compression
		if quality <= 0 || quality > 100 {
			quality = 85
		}
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png", "":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales the image down to fit within maxDim while keeping
// the aspect ratio. Images already small enough are cloned untouched.
func Thumbnail(src image.Image, maxDim int) *image.NRGBA {
	bounds := src.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return imaging.Clone(src)
	}
	return imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)
}
