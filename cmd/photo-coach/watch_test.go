package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

// installFakeFFmpeg puts an ffmpeg on PATH that repeats frame until killed
func installFakeFFmpeg(t *testing.T, frame string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	bin := t.TempDir()
	script := "#!/bin/sh\nwhile :; do cat '" + frame + "'; done\n"
	if err := os.WriteFile(filepath.Join(bin, "ffmpeg"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestWatchStopsFFmpegWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "frame.png")
	writeTestImage(t, png)
	img, err := imaging.Open(png)
	if err != nil {
		t.Fatal(err)
	}
	frame := filepath.Join(dir, "frame.jpg")
	if err := imaging.Save(img, frame); err != nil {
		t.Fatal(err)
	}
	installFakeFFmpeg(t, frame)

	// a regular file where the photo directory should go
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.json"),
		"--backend", "none",
		"--csv", filepath.Join(dir, "scores.csv"),
		"watch", "--input", "camera.mjpeg", "--save-threshold", "0.5", "--save-dir", blocked,
	})

	done := make(chan error, 1)
	go func() { done <- rootCmd.Execute() }()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "photo directory") {
			t.Errorf("Expected save failure, got %v", err)
		}
	case <-time.After(20 * time.Second):
		t.Fatal("watch did not return after the save failed")
	}
}
