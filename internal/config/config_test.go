package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "tfbscan.yaml", "workers: 4\nwindow_size: 30\nwindow_threshold: 0.02\nno_cache: true\ntimeout: 5s\nentrez:\n  base_url: http://localhost:9999\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Workers == nil || *cfg.Workers != 4 {
		t.Fatalf("expected workers=4, got %#v", cfg.Workers)
	}
	if cfg.WindowSize == nil || *cfg.WindowSize != 30 {
		t.Fatalf("expected window_size=30, got %#v", cfg.WindowSize)
	}
	if cfg.WindowThreshold == nil || *cfg.WindowThreshold != 0.02 {
		t.Fatalf("expected window_threshold=0.02, got %#v", cfg.WindowThreshold)
	}
	if cfg.NoCache == nil || *cfg.NoCache != true {
		t.Fatalf("expected no_cache=true")
	}
	if cfg.PromoterLength != nil {
		t.Fatalf("expected promoter_length unset, got %v", *cfg.PromoterLength)
	}
	if got := cfg.EntrezBaseURL(); got != "http://localhost:9999" {
		t.Fatalf("expected entrez base url, got %q", got)
	}
	if got := cfg.JASPARBaseURL(); got != "" {
		t.Fatalf("expected empty jaspar base url, got %q", got)
	}
	d, err := cfg.TimeoutDuration()
	if err != nil || d != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v (%v)", d, err)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "tfbscan.yaml", "workers: [1\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected parse error")
	}
	bad := FileConfig{Timeout: new(string)}
	*bad.Timeout = "soon"
	if _, err := bad.TimeoutDuration(); err == nil {
		t.Fatal("expected duration error")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "tfbscan.yaml", "workers: 1\n")
	writeTemp(t, dir, ".tfbscan.yaml", "workers: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Workers == nil || *cfg.Workers != 7 {
		t.Fatalf("expected workers=7 from .tfbscan.yaml, got %#v", cfg.Workers)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "tfbscan")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(cfgDir, "config.yml")
	if err := os.WriteFile(p, []byte("email: a@b.org\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Email == nil || *cfg.Email != "a@b.org" {
		t.Fatalf("expected email from global config, got %#v", cfg.Email)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", ".tfbscan.yml")
	fc := Default()
	fc.Email = ptr("a@b.org")
	if err := Save(p, fc, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(p, fc, false); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := Save(p, fc, true); err != nil {
		t.Fatalf("forced Save: %v", err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WindowSize == nil || *cfg.WindowSize != 40 {
		t.Fatalf("expected window_size=40, got %#v", cfg.WindowSize)
	}
	if cfg.Email == nil || *cfg.Email != "a@b.org" {
		t.Fatalf("expected email, got %#v", cfg.Email)
	}
	if cfg.APIKey != nil || cfg.Entrez != nil {
		t.Fatalf("expected unset keys to stay unset")
	}
	if cfg.Pseudocount == nil || *cfg.Pseudocount != 0 {
		t.Fatalf("expected explicit pseudocount=0, got %#v", cfg.Pseudocount)
	}
}
