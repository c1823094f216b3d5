package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ClientTimeout != "30s" {
		t.Errorf("ClientTimeout = %q, want 30s", cfg.ClientTimeout)
	}
	if cfg.Fetch.Attempts != 3 {
		t.Errorf("Fetch.Attempts = %d, want 3", cfg.Fetch.Attempts)
	}
	if cfg.Fetch.Backoff != "3s" {
		t.Errorf("Fetch.Backoff = %q, want 3s", cfg.Fetch.Backoff)
	}
	if cfg.Fetch.MaxBodySize != 1024*1024 {
		t.Errorf("Fetch.MaxBodySize = %d, want 1MiB", cfg.Fetch.MaxBodySize)
	}
	if cfg.TVSubtitles.BaseURL != "http://www.tvsubtitles.net" {
		t.Errorf("TVSubtitles.BaseURL = %q", cfg.TVSubtitles.BaseURL)
	}
	if cfg.OpenSubtitles.ReplyLimit != 500 {
		t.Errorf("OpenSubtitles.ReplyLimit = %d, want 500", cfg.OpenSubtitles.ReplyLimit)
	}
	if cfg.OpenSubtitles.Enabled {
		t.Error("OpenSubtitles.Enabled should default to false")
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want default", cfg.UserAgent)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("client_timeout: 5s\nopensubtitles:\n  reply_limit: 100\ntvsubtitles:\n  base_url: http://catalog.test\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("APP_FETCH_ATTEMPTS", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ClientTimeout != "5s" {
		t.Errorf("ClientTimeout = %q, want 5s", cfg.ClientTimeout)
	}
	if cfg.OpenSubtitles.ReplyLimit != 100 {
		t.Errorf("ReplyLimit = %d, want 100", cfg.OpenSubtitles.ReplyLimit)
	}
	if cfg.TVSubtitles.BaseURL != "http://catalog.test" {
		t.Errorf("BaseURL = %q", cfg.TVSubtitles.BaseURL)
	}
	if cfg.Fetch.Attempts != 5 {
		t.Errorf("Fetch.Attempts = %d, want 5 from environment", cfg.Fetch.Attempts)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "empty uses default", value: "", want: time.Minute},
		{name: "valid", value: "3s", want: 3 * time.Second},
		{name: "invalid uses default", value: "soon", want: time.Minute},
		{name: "negative uses default", value: "-1s", want: time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration("timeout", tt.value, time.Minute); got != tt.want {
				t.Errorf("Duration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
