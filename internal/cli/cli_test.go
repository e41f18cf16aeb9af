package cli

import (
	"bytes"
	"errors"
	"testing"
)

func TestConfirmOrAbort_WithoutYes_PromptsAndAborts(t *testing.T) {
	var stderr bytes.Buffer

	err := confirmOrAbort(false, &stderr, "Mark email %s as spam? Use -y to confirm.", "e1")

	if !errors.Is(err, errAborted) {
		t.Fatalf("err = %v, want errAborted", err)
	}
	if got, want := stderr.String(), "Mark email e1 as spam? Use -y to confirm.\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestConfirmOrAbort_WithYes_SilentlyProceeds(t *testing.T) {
	var stderr bytes.Buffer

	if err := confirmOrAbort(true, &stderr, "Delete masked email %s? Use -y to confirm.", "m1"); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestResizedFilename(t *testing.T) {
	cases := []struct {
		name string
		mime string
		want string
	}{
		{"photo.png", "image/jpeg", "photo.jpg"},
		{"photo.PNG", "image/jpeg", "photo.jpg"},
		{"photo.jpg", "image/jpeg", "photo.jpg"},
		{"photo.JPEG", "image/jpeg", "photo.JPEG"},
		{"photo.png", "image/png", "photo.png"},
		{"noext", "image/jpeg", "noext.jpg"},
	}
	for _, tc := range cases {
		if got := resizedFilename(tc.name, tc.mime); got != tc.want {
			t.Errorf("resizedFilename(%q, %q) = %q, want %q", tc.name, tc.mime, got, tc.want)
		}
	}
}

func TestRootCmd_RegistersAllCommands(t *testing.T) {
	a := &app{version: "test"}
	root := a.rootCmd()

	want := []string{
		"auth", "list", "get", "thread", "search", "send", "move", "spam",
		"mark-read", "download", "reply", "forward", "masked", "contacts",
		"export", "mcp",
	}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
