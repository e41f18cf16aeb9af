package attachment

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestParseSize_Cases(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"1.5M", 1572864, true},
		{"500K", 512000, true},
		{"2048", 2048, true},
		{"1m", 1048576, true},
		{"0.5k", 512, true},
		{"", 0, false},
		{"M", 0, false},
		{"abc", 0, false},
		{"-1K", 0, false},
		{"12Q", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseSize(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseSize(%q) = %d, %v; want %d, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{512, "512 bytes"},
		{2048, "2.0 KB"},
		{1572864, "1.5 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.size); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"weird\x00name.txt", "weird_name.txt"},
		{"", "attachment"},
		{"..", "attachment"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.input); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestIsImage_MIMEAndExtension(t *testing.T) {
	if !IsImage("image/png", "whatever.bin") {
		t.Error("image/png not detected")
	}
	if !IsImage("application/octet-stream", "photo.JPG") {
		t.Error("jpg extension not detected")
	}
	if IsImage("application/pdf", "doc.pdf") {
		t.Error("pdf detected as image")
	}
}

func TestInferImageMIME(t *testing.T) {
	mime, ok := InferImageMIME("photo.jpeg")
	if !ok || mime != "image/jpeg" {
		t.Errorf("InferImageMIME(photo.jpeg) = %q, %v", mime, ok)
	}
	if _, ok := InferImageMIME("doc.pdf"); ok {
		t.Error("InferImageMIME(doc.pdf) = ok")
	}
}

func TestResizeImage_SmallDataPassesThrough(t *testing.T) {
	data := []byte("already small")
	out, mime, err := ResizeImage(data, "image/png", 1024)
	if err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}
	if !bytes.Equal(out, data) || mime != "image/png" {
		t.Errorf("small data changed: %d bytes, %q", len(out), mime)
	}
}

func TestResizeImage_LargeImageShrinksToLimit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	// Noise compresses poorly, forcing an actual downscale.
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{uint8(x * y), uint8(x ^ y), uint8(x + y), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	maxBytes := int64(10 * 1024)
	out, mime, err := ResizeImage(buf.Bytes(), "image/png", maxBytes)
	if err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}
	if int64(len(out)) > maxBytes {
		t.Errorf("resized to %d bytes, want <= %d", len(out), maxBytes)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg after re-encode", mime)
	}
}

func TestResizeImage_GarbageInput_Errors(t *testing.T) {
	huge := bytes.Repeat([]byte{0xde, 0xad}, 1024)
	if _, _, err := ResizeImage(huge, "image/png", 16); err == nil {
		t.Error("ResizeImage accepted undecodable data")
	}
}

func TestExtractText_TextualTypes(t *testing.T) {
	if text, ok := ExtractText([]byte("hello"), "text/plain; charset=utf-8", "a.bin"); !ok || text != "hello" {
		t.Errorf("text/plain: %q, %v", text, ok)
	}
	if text, ok := ExtractText([]byte(`{"a":1}`), "application/json", "data"); !ok || text != `{"a":1}` {
		t.Errorf("json: %q, %v", text, ok)
	}
	if _, ok := ExtractText([]byte("x,y\n1,2"), "application/octet-stream", "table.csv"); !ok {
		t.Error("csv extension not honored")
	}
}

func TestExtractText_NonTextual_NoValueNoError(t *testing.T) {
	if _, ok := ExtractText([]byte{0x25, 0x50, 0x44, 0x46}, "application/pdf", "doc.pdf"); ok {
		t.Error("pdf extracted as text")
	}
	if _, ok := ExtractText([]byte{0xff, 0xfe, 0x00}, "text/plain", "bad.txt"); ok {
		t.Error("invalid utf-8 extracted")
	}
}

func TestExtractText_LargeTextRoundTrips(t *testing.T) {
	text := strings.Repeat("line\n", 1000)
	got, ok := ExtractText([]byte(text), "text/plain", "big.txt")
	if !ok || got != text {
		t.Errorf("large text extraction failed: %v", ok)
	}
}
