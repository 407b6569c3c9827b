package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"chartlens/internal/types"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// cronParser accepts the six-field specs the scheduler runs with
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Camera device kinds
const (
	CameraSynthetic   = "SYNTHETIC"
	CameraFile        = "FILE"
	CameraUnavailable = "NONE"
)

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		Mode        string   `yaml:"mode"` // debug | release | test
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Camera struct {
		Device      string `yaml:"device"`
		FramePath   string `yaml:"frame_path"`
		FacingMode  string `yaml:"facing_mode"`
		IdealWidth  int    `yaml:"ideal_width"`
		IdealHeight int    `yaml:"ideal_height"`
		MaxWidth    int    `yaml:"max_width"`
		MaxHeight   int    `yaml:"max_height"`
	} `yaml:"camera"`
	Classifier struct {
		MinLatencyMs int `yaml:"min_latency_ms"`
		MaxLatencyMs int `yaml:"max_latency_ms"`
	} `yaml:"classifier"`
	Series struct {
		SeedPoints int `yaml:"seed_points"`
		MaxPoints  int `yaml:"max_points"` // 0 keeps every point
	} `yaml:"series"`
	Upload struct {
		MaxBytes  int64 `yaml:"max_bytes"`
		MaxPixels int64 `yaml:"max_pixels"`
	} `yaml:"upload"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
		DigestCron    string `yaml:"digest_cron"`
	} `yaml:"journal"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	RandomSeed uint64 `yaml:"random_seed"` // 0 seeds from the clock
}

// MinLatency is the lower bound of the simulated classification delay
func (c *Config) MinLatency() time.Duration {
	return time.Duration(c.Classifier.MinLatencyMs) * time.Millisecond
}

// MaxLatency is the upper bound of the simulated classification delay
func (c *Config) MaxLatency() time.Duration {
	return time.Duration(c.Classifier.MaxLatencyMs) * time.Millisecond
}

// StreamDefaults is what a live stream request falls back to for fields it leaves empty
func (c *Config) StreamDefaults() types.StreamConstraints {
	return types.StreamConstraints{
		FacingMode:  c.Camera.FacingMode,
		IdealWidth:  c.Camera.IdealWidth,
		IdealHeight: c.Camera.IdealHeight,
	}
}

func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.mode '%s': must be 'debug', 'release' or 'test'", c.Server.Mode)
	}
	switch c.Camera.Device {
	case CameraSynthetic, CameraUnavailable:
	case CameraFile:
		if c.Camera.FramePath == "" {
			return errors.New("camera.frame_path is required when camera.device is FILE")
		}
	default:
		return fmt.Errorf("invalid camera.device '%s': must be 'SYNTHETIC', 'FILE' or 'NONE'", c.Camera.Device)
	}
	if c.Camera.FacingMode != "environment" && c.Camera.FacingMode != "user" {
		return fmt.Errorf("camera.facing_mode must be 'environment' or 'user', got '%s'", c.Camera.FacingMode)
	}
	if c.Camera.MaxWidth <= 0 || c.Camera.MaxHeight <= 0 {
		return fmt.Errorf("camera max resolution must be positive, got %dx%d", c.Camera.MaxWidth, c.Camera.MaxHeight)
	}
	if c.Camera.IdealWidth <= 0 || c.Camera.IdealWidth > c.Camera.MaxWidth ||
		c.Camera.IdealHeight <= 0 || c.Camera.IdealHeight > c.Camera.MaxHeight {
		return fmt.Errorf("camera ideal resolution %dx%d must be within 1x1..%dx%d",
			c.Camera.IdealWidth, c.Camera.IdealHeight, c.Camera.MaxWidth, c.Camera.MaxHeight)
	}
	if c.Classifier.MinLatencyMs < 0 || c.Classifier.MaxLatencyMs < c.Classifier.MinLatencyMs {
		return fmt.Errorf("classifier latency must satisfy 0 <= min <= max, got %d..%d",
			c.Classifier.MinLatencyMs, c.Classifier.MaxLatencyMs)
	}
	if c.Series.SeedPoints <= 0 {
		return fmt.Errorf("series.seed_points must be positive, got %d", c.Series.SeedPoints)
	}
	if c.Series.MaxPoints != 0 && c.Series.MaxPoints < c.Series.SeedPoints {
		return fmt.Errorf("series.max_points must be 0 or >= seed_points, got %d", c.Series.MaxPoints)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.MaxPixels <= 0 {
		return fmt.Errorf("upload.max_pixels must be positive, got %d", c.Upload.MaxPixels)
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must not be negative, got %d", c.Journal.RetentionDays)
	}
	if _, err := cronParser.Parse(c.Journal.DigestCron); err != nil {
		return fmt.Errorf("invalid journal.digest_cron '%s': %w", c.Journal.DigestCron, err)
	}
	return nil
}

// Default returns a config with every default applied, as if loaded from an empty file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig reads YAML from path (a missing file means all defaults), applies
// environment overrides and defaults, then validates.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CHARTLENS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CHARTLENS_CAMERA"); v != "" {
		c.Camera.Device = strings.ToUpper(v)
	}
	if v := os.Getenv("CHARTLENS_FRAME_PATH"); v != "" {
		c.Camera.FramePath = v
	}
	if v := os.Getenv("CHARTLENS_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CHARTLENS_JOURNAL_DIR"); v != "" {
		c.Journal.Dir = v
	}
	if v := os.Getenv("CHARTLENS_RANDOM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.RandomSeed = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Camera.Device == "" {
		c.Camera.Device = CameraSynthetic
	}
	if c.Camera.FacingMode == "" {
		c.Camera.FacingMode = "environment"
	}
	if c.Camera.IdealWidth == 0 {
		c.Camera.IdealWidth = 1920
	}
	if c.Camera.IdealHeight == 0 {
		c.Camera.IdealHeight = 1080
	}
	if c.Camera.MaxWidth == 0 {
		c.Camera.MaxWidth = 3840
	}
	if c.Camera.MaxHeight == 0 {
		c.Camera.MaxHeight = 2160
	}
	if c.Classifier.MinLatencyMs == 0 && c.Classifier.MaxLatencyMs == 0 {
		c.Classifier.MinLatencyMs = 1000
		c.Classifier.MaxLatencyMs = 2000
	}
	if c.Series.SeedPoints == 0 {
		c.Series.SeedPoints = 30
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if c.Upload.MaxPixels == 0 {
		c.Upload.MaxPixels = 40_000_000
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 7
	}
	if c.Journal.DigestCron == "" {
		c.Journal.DigestCron = "0 5 0 * * *"
	}
}
