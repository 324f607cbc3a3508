// Package imagecodec turns the base64 payload of an analyze request into a
// normalized 3-channel image and back into bytes a classifier can consume.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	// extra decoders for image.Decode
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultJPEGQuality = 95

var (
	ErrEmptyPayload     = errors.New("empty image payload")
	ErrInvalidBase64    = errors.New("image payload is not valid base64")
	ErrUndecodableImage = errors.New("image bytes are not a supported image")
)

// Frame is a decoded image ready for classification
type Frame struct {
	// Image is opaque: every alpha byte is 0xff.
	Image *image.NRGBA
	// Format is the name reported by the registered decoder ("png", "jpeg", ...).
	Format string
	// Scale maps working coordinates back to source pixels (1 when not resized).
	Scale float64
}

// Width returns the working image width in pixels.
func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the working image height in pixels.
func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// JPEG encodes the frame for transport to a classifier.
func (f *Frame) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, f.Image, imaging.JPEG, imaging.JPEGQuality(defaultJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Decoder loads request payloads into frames
type Decoder struct {
	maxDimension int
}

// NewDecoder creates a Decoder. A positive maxDimension downsizes larger
// images to fit within maxDimension x maxDimension.
func NewDecoder(maxDimension int) *Decoder {
	return &Decoder{maxDimension: maxDimension}
}

// Load decodes a base64 or data-URL payload into a normalized frame.
func (d *Decoder) Load(payload string) (*Frame, error) {
	data, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	frame := &Frame{
		Image:  ToRGB(img),
		Format: format,
		Scale:  1,
	}

	if d.maxDimension > 0 && (frame.Width() > d.maxDimension || frame.Height() > d.maxDimension) {
		srcWidth := frame.Width()
		frame.Image = imaging.Fit(frame.Image, d.maxDimension, d.maxDimension, imaging.Lanczos)
		frame.Scale = float64(srcWidth) / float64(frame.Width())
	}

	return frame, nil
}

// DecodePayload strips an optional "data:<mime>;base64," header and decodes
// the remainder.
func DecodePayload(payload string) ([]byte, error) {
	if _, rest, found := strings.Cut(payload, ","); found {
		payload = rest
	}
	payload = stripSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		if lastErr == nil {
			lastErr = err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, lastErr)
}

// Decode reads any registered image format, applying EXIF orientation.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrUndecodableImage
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	return img, format, nil
}

// ToRGB converts any color model to opaque NRGBA. Alpha is discarded, not
// composited, so color channels keep their stored values.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
