package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/vidaction/pkg/adapters/memsource"
	"github.com/user/vidaction/pkg/config"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func TestBuildConfig_Defaults(t *testing.T) {
	cmd := &ClassifyCmd{Video: "clip.mp4"}

	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Video != "clip.mp4" || cfg.FPS != 5 || cfg.ResetAfterMs != 15000 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidaction.yaml")
	if err := os.WriteFile(path, []byte("fps: 10\nmax_results: 5\noutput_dir: /tmp/a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &ClassifyCmd{
		Video:    "clip.mp4",
		Config:   path,
		FPS:      intPtr(2),
		Rotation: strPtr("apply"),
		Worker:   strPtr("./worker"),
	}

	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.FPS != 2 {
		t.Errorf("flag should override file fps, got %d", cfg.FPS)
	}
	if cfg.MaxResults != 5 || cfg.OutputDir != "/tmp/a" {
		t.Errorf("file values should survive, got %+v", cfg)
	}
	if cfg.Rotation != "apply" {
		t.Errorf("expected rotation apply, got %q", cfg.Rotation)
	}
	if cfg.Classifier.Kind != config.ClassifierWorker || cfg.Classifier.Worker.Command != "./worker" {
		t.Errorf("worker flag should select the worker classifier, got %+v", cfg.Classifier)
	}
}

func TestBuildConfig_MissingFile(t *testing.T) {
	cmd := &ClassifyCmd{Video: "clip.mp4", Config: filepath.Join(t.TempDir(), "missing.yaml")}

	if _, err := cmd.buildConfig(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewOpener_Directory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Video = t.TempDir()

	opener, err := newOpener(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("newOpener failed: %v", err)
	}
	mem, ok := opener.(*memsource.Opener)
	if !ok {
		t.Fatalf("expected a memsource opener for a directory, got %T", opener)
	}
	if mem.FPS != cfg.Source.SequenceFPS {
		t.Errorf("expected fps %d, got %d", cfg.Source.SequenceFPS, mem.FPS)
	}
}
