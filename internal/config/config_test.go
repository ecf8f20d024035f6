package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Vocabulary) != 7 {
		t.Errorf("Vocabulary = %v, want 7 entries", cfg.Vocabulary)
	}
	if cfg.KeepStructure {
		t.Error("KeepStructure should default to false")
	}
	if !cfg.AutoRename {
		t.Error("AutoRename should default to true")
	}
	if cfg.MaxRenameAttempts != models.DefaultMaxRenameAttempts {
		t.Errorf("MaxRenameAttempts = %d, want %d", cfg.MaxRenameAttempts, models.DefaultMaxRenameAttempts)
	}
	if cfg.ScanReportEvery != 50 || cfg.MoveStatusEvery != 10 || cfg.ErrorPreview != 20 {
		t.Errorf("progress defaults = %d/%d/%d, want 50/10/20", cfg.ScanReportEvery, cfg.MoveStatusEvery, cfg.ErrorPreview)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		t.Errorf("Journal = %+v, want enabled with a path", cfg.Journal)
	}

	set := cfg.FilterBuilder().Build()
	if got := set.String(); got != ".avi, .mkv, .mp4" {
		t.Errorf("default filter = %q, want .avi, .mkv, .mp4", got)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filemover.yaml")
	content := `
extensions: [mov, srt]
custom_extensions: "sub; .IDX"
name_contains: holiday
min_size: 1K
max_size: 2M
keep_structure: true
auto_rename: false
journal:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.KeepStructure || cfg.AutoRename || cfg.Journal.Enabled {
		t.Errorf("booleans not read from file: %+v", cfg)
	}

	opts, err := cfg.ScanOptions("/src")
	if err != nil {
		t.Fatalf("ScanOptions() error = %v", err)
	}
	if got := opts.Extensions.String(); got != ".idx, .mov, .srt, .sub" {
		t.Errorf("Extensions = %q", got)
	}
	if opts.MinSize != 1024 || opts.MaxSize != 2*1024*1024 {
		t.Errorf("size bounds = %d..%d", opts.MinSize, opts.MaxSize)
	}
	if opts.NameContains != "holiday" || opts.SourceRoot != "/src" {
		t.Errorf("ScanOptions = %+v", opts)
	}

	reloc := cfg.RelocationOptions("/dst", "/src")
	if !reloc.KeepRelativeStructure || reloc.AutoRenameOnConflict || reloc.DestinationRoot != "/dst" {
		t.Errorf("RelocationOptions = %+v", reloc)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FILEMOVER_AUTO_RENAME", "false")
	t.Setenv("FILEMOVER_ERROR_PREVIEW", "5")
	t.Setenv("FILEMOVER_JOURNAL_PATH", "/tmp/custom.db")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AutoRename {
		t.Error("AutoRename should be overridden by environment")
	}
	if cfg.ErrorPreview != 5 {
		t.Errorf("ErrorPreview = %d, want 5", cfg.ErrorPreview)
	}
	if cfg.Journal.Path != "/tmp/custom.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() with a missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{MaxRenameAttempts: 1, ScanReportEvery: 1, MoveStatusEvery: 1}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad min size", func(c *Config) { c.MinSize = "lots" }, true},
		{"min above max", func(c *Config) { c.MinSize = "2M"; c.MaxSize = "1M" }, true},
		{"min without max", func(c *Config) { c.MinSize = "2M" }, false},
		{"zero rename attempts", func(c *Config) { c.MaxRenameAttempts = 0 }, true},
		{"zero report interval", func(c *Config) { c.ScanReportEvery = 0 }, true},
		{"zero status interval", func(c *Config) { c.MoveStatusEvery = 0 }, true},
		{"negative preview", func(c *Config) { c.ErrorPreview = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterBuilder_UnknownEnabledBecomeCustom(t *testing.T) {
	cfg := &Config{Extensions: []string{"mp4", "m2ts"}}
	set := cfg.FilterBuilder().Build()

	for _, ext := range []string{".mp4", ".m2ts"} {
		if !set.Contains(ext) {
			t.Errorf("filter %v should contain %s", set, ext)
		}
	}
	if set.Contains(".mkv") {
		t.Errorf("filter %v should not contain .mkv", set)
	}
}
