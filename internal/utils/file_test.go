package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"PHOTO.JPEG", true},
		{"frame.webp", true},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tc := range tests {
		if got := IsImageFile(tc.name); got != tc.want {
			t.Errorf("IsImageFile(%q) = %v, expected %v", tc.name, got, tc.want)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/in/cat.png", "out", "", "_overlay", "jpg")
	if want := filepath.Join("out", "cat_overlay.jpg"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	got = GenerateOutputFilename("dog.webp", "out", "x_", "", "")
	if want := filepath.Join("out", "x_dog.webp"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := EnsureDir(sub); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.jpg", "a.png", "readme.md", filepath.Join("sub", "c.webp")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	single := filepath.Join(dir, "b.jpg")
	got, err := CollectImages([]string{single, dir, "https://example.com/p.jpg"})
	if err != nil {
		t.Fatalf("CollectImages failed: %v", err)
	}

	want := []string{
		single,
		filepath.Join(dir, "a.png"),
		filepath.Join(sub, "c.webp"),
		"https://example.com/p.jpg",
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}

func TestCollectImagesMissing(t *testing.T) {
	if _, err := CollectImages([]string{filepath.Join(t.TempDir(), "missing.jpg")}); err == nil {
		t.Error("Expected error for missing path")
	}
}
