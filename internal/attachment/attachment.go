// Package attachment holds the pure helpers for attachment handling: size
// parsing and formatting, image detection and downscaling, best-effort text
// extraction, and filename sanitizing. Nothing here touches the network.
package attachment

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.Decode
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
)

// MCPImageMaxBytes is the size cap for images returned inline over the MCP
// tool surface.
const MCPImageMaxBytes = 1024 * 1024

// ParseSize parses a human size like "500K", "1.5M", or "2048". K and M are
// binary multiples; fractions are allowed and the result truncates toward
// zero. ok is false for anything else.
func ParseSize(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return int64(value * float64(multiplier)), true
}

// FormatSize renders a byte count for humans: MB above a megabyte, KB above
// a kilobyte, plain bytes otherwise.
func FormatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/1024/1024)
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// SanitizeFilename strips path separators and control characters so a
// server-supplied attachment name cannot escape the download directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			b.WriteRune('_')
		case r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" || out == "." || out == ".." {
		return "attachment"
	}
	return out
}

var imageExtMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// IsImage reports whether the attachment is an image, judging by MIME type
// first and filename extension as a fallback.
func IsImage(mime, filename string) bool {
	if strings.HasPrefix(mime, "image/") {
		return true
	}
	_, ok := imageExtMIME[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// InferImageMIME guesses an image MIME type from the filename extension,
// for attachments that arrive typed application/octet-stream.
func InferImageMIME(filename string) (string, bool) {
	mime, ok := imageExtMIME[strings.ToLower(filepath.Ext(filename))]
	return mime, ok
}

// ResizeImage re-encodes an image to fit within maxBytes, halving its
// dimensions until it fits. Output is always JPEG (the best bytes-per-pixel
// of the formats we can encode), so the returned MIME type may differ from
// the input. Data already within the limit passes through untouched.
func ResizeImage(data []byte, mime string, maxBytes int64) ([]byte, string, error) {
	if int64(len(data)) <= maxBytes {
		return data, mime, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	for {
		encoded, err := encodeJPEGScaled(img, width, height)
		if err != nil {
			return nil, "", err
		}
		if int64(len(encoded)) <= maxBytes {
			return encoded, "image/jpeg", nil
		}
		width /= 2
		height /= 2
		if width < 1 || height < 1 {
			return nil, "", fmt.Errorf("image cannot be reduced below %d bytes", maxBytes)
		}
	}
}

func encodeJPEGScaled(img image.Image, width, height int) ([]byte, error) {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// textualMIMEs are non-text/* types whose payload is still plain text.
var textualMIMEs = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/csv":        true,
	"application/javascript": true,
	"application/x-yaml":     true,
}

var textualExts = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".xml": true,
	".yaml": true, ".yml": true, ".log": true, ".html": true, ".htm": true,
}

// ExtractText returns the attachment's content as text when the type is
// textual and the bytes are valid UTF-8. Extraction is best effort: any
// attachment it cannot handle yields ok=false, never an error, so a bad
// attachment cannot abort a listing.
func ExtractText(data []byte, mime, filename string) (string, bool) {
	mime = strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))

	textual := strings.HasPrefix(mime, "text/") || textualMIMEs[mime]
	if !textual {
		textual = textualExts[strings.ToLower(filepath.Ext(filename))]
	}
	if !textual {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
