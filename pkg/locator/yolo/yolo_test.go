package yolo

import (
	"path/filepath"
	"testing"
)

func TestSharedLoadsOnce(t *testing.T) {
	missing := DefaultConfig()
	missing.ModelPath = filepath.Join(t.TempDir(), "absent.onnx")

	m1, err1 := Shared(missing)
	if err1 == nil || m1 != nil {
		t.Fatalf("Expected error for a missing model, got %v %v", m1, err1)
	}

	// later calls reuse the first outcome whatever the config
	m2, err2 := Shared(DefaultConfig())
	if m2 != m1 || err2 != err1 {
		t.Errorf("Expected the shared result again, got %v %v", m2, err2)
	}
}

func TestLoadMissingModel(t *testing.T) {
	if _, err := Load(Config{ModelPath: filepath.Join(t.TempDir(), "nope.onnx")}); err == nil {
		t.Error("Expected error for a missing model file")
	}
}
