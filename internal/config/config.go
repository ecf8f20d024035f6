package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/damiannass88/WindowsFileMover/internal/filesystem"
	"github.com/damiannass88/WindowsFileMover/internal/filter"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/viper"
)

// Config represents the filemover configuration
type Config struct {
	// Filter settings
	Vocabulary       []string `mapstructure:"vocabulary"`        // extensions offered as toggles
	Extensions       []string `mapstructure:"extensions"`        // toggles switched on
	CustomExtensions string   `mapstructure:"custom_extensions"` // free-text list, e.g. "srt; .sub"
	NameContains     string   `mapstructure:"name_contains"`     // case-insensitive word in the file name
	MinSize          string   `mapstructure:"min_size"`          // e.g. 650K, empty for no bound
	MaxSize          string   `mapstructure:"max_size"`          // e.g. 4G, empty for no bound

	// Move settings
	KeepStructure     bool `mapstructure:"keep_structure"`
	AutoRename        bool `mapstructure:"auto_rename"`
	MaxRenameAttempts int  `mapstructure:"max_rename_attempts"`

	// Progress and reporting
	ScanReportEvery int `mapstructure:"scan_report_every"` // records between scan progress updates
	MoveStatusEvery int `mapstructure:"move_status_every"` // items between move status refreshes
	ErrorPreview    int `mapstructure:"error_preview"`     // errors shown before "(+N more)"

	Journal  JournalConfig `mapstructure:"journal"`
	LockPath string        `mapstructure:"lock_path"` // lock file guarding concurrent moves
}

// JournalConfig holds the operation journal settings
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // SQLite database file
}

// LoadConfig loads configuration from defaults, an optional YAML file and environment variables.
// An empty configFile reads only defaults and environment.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("vocabulary", filter.DefaultVocabulary)
	v.SetDefault("extensions", filter.DefaultEnabled)
	v.SetDefault("custom_extensions", "")
	v.SetDefault("name_contains", "")
	v.SetDefault("min_size", "")
	v.SetDefault("max_size", "")
	v.SetDefault("keep_structure", false)
	v.SetDefault("auto_rename", true)
	v.SetDefault("max_rename_attempts", models.DefaultMaxRenameAttempts)
	v.SetDefault("scan_report_every", 50)
	v.SetDefault("move_status_every", 10)
	v.SetDefault("error_preview", 20)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", defaultJournalPath())
	v.SetDefault("lock_path", filepath.Join(os.TempDir(), "filemover.lock"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	// Read environment variables, FILEMOVER_JOURNAL_PATH for journal.path
	v.SetEnvPrefix("FILEMOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and size strings
func (c *Config) Validate() error {
	if _, _, err := c.SizeBounds(); err != nil {
		return err
	}
	if c.MaxRenameAttempts < 1 {
		return fmt.Errorf("max_rename_attempts must be at least 1, got %d", c.MaxRenameAttempts)
	}
	if c.ScanReportEvery < 1 {
		return fmt.Errorf("scan_report_every must be at least 1, got %d", c.ScanReportEvery)
	}
	if c.MoveStatusEvery < 1 {
		return fmt.Errorf("move_status_every must be at least 1, got %d", c.MoveStatusEvery)
	}
	if c.ErrorPreview < 0 {
		return fmt.Errorf("error_preview must not be negative, got %d", c.ErrorPreview)
	}
	return nil
}

// SizeBounds parses min_size and max_size
func (c *Config) SizeBounds() (min, max int64, err error) {
	min, err = filesystem.ParseSize(c.MinSize)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min_size: %w", err)
	}
	max, err = filesystem.ParseSize(c.MaxSize)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max_size: %w", err)
	}
	if max > 0 && min > max {
		return 0, 0, fmt.Errorf("min_size %s is larger than max_size %s", c.MinSize, c.MaxSize)
	}
	return min, max, nil
}

// FilterBuilder returns a builder with the configured toggles and custom list.
// Enabled names outside the vocabulary are carried over into the custom list.
func (c *Config) FilterBuilder() *filter.ExtensionFilterBuilder {
	b := filter.NewExtensionFilterBuilder(c.Vocabulary)
	unknown := b.EnableOnly(c.Extensions)

	custom := c.CustomExtensions
	if len(unknown) > 0 {
		custom = strings.TrimSpace(custom + " " + strings.Join(unknown, " "))
	}
	b.SetCustom(custom)
	return b
}

// ScanOptions builds the options for a scan of source
func (c *Config) ScanOptions(source string) (models.ScanOptions, error) {
	min, max, err := c.SizeBounds()
	if err != nil {
		return models.ScanOptions{}, err
	}
	return models.ScanOptions{
		SourceRoot:   source,
		Extensions:   c.FilterBuilder().Build(),
		NameContains: c.NameContains,
		MinSize:      min,
		MaxSize:      max,
	}, nil
}

// RelocationOptions builds the options for a move into destination
func (c *Config) RelocationOptions(destination, source string) models.RelocationOptions {
	return models.RelocationOptions{
		DestinationRoot:       destination,
		SourceRoot:            source,
		KeepRelativeStructure: c.KeepStructure,
		AutoRenameOnConflict:  c.AutoRename,
		MaxRenameAttempts:     c.MaxRenameAttempts,
	}
}

func defaultJournalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "filemover", "journal.db")
}
