package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Camera      CameraConfig      `yaml:"camera"`
	Display     DisplayConfig     `yaml:"display"`
	Log         LogConfig         `yaml:"log"`
	Web         WebConfig         `yaml:"web"`
}

type StoreConfig struct {
	KnownFacesDir string `yaml:"known_faces_dir"` // enrollment images, file name (minus extension) is the identity
}

type LedgerConfig struct {
	Driver       string `yaml:"driver"`         // csv, postgres or mysql
	File         string `yaml:"file"`           // CSV ledger path (driver csv)
	DatabaseURL  string `yaml:"database_url"`   // DSN for the SQL drivers
	MaxOpenConns int    `yaml:"max_open_conns"` // SQL pool size
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type EmbeddingConfig struct {
	URL     string        `yaml:"url"` // defaults to http://localhost:8000
	Timeout time.Duration `yaml:"timeout"`
}

type RecognitionConfig struct {
	Cooldown          time.Duration `yaml:"cooldown"`           // minimum gap between two counted sightings
	DistanceThreshold float64       `yaml:"distance_threshold"` // max cosine distance for a match
}

type CameraConfig struct {
	Device      string        `yaml:"device"`       // gocv device id or path
	SnapshotURL string        `yaml:"snapshot_url"` // HTTP JPEG snapshot endpoint, used instead of Device when set
	FramesDir   string        `yaml:"frames_dir"`   // replay images from a directory instead of a camera
	Interval    time.Duration `yaml:"interval"`     // minimum gap between snapshot or replayed frames
}

type DisplayConfig struct {
	Headless    bool    `yaml:"headless"`
	WindowTitle string  `yaml:"window_title"`
	FontPath    string  `yaml:"font_path"` // optional TTF for labels, basic font otherwise
	FontSize    float64 `yaml:"font_size"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev or prod
	File string `yaml:"file"` // optional rotated JSON log file
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`            // 0 disables the operator API
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins besides localhost
	APIToken       string   `yaml:"api_token"`       // bearer token for POST endpoints, empty disables auth
}

// Addr returns the listen address of the operator API.
func (c *WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether the operator API should be started.
func (c *WebConfig) Enabled() bool {
	return c.Port > 0
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads a positive Go duration ("90s", "1m"), falling back to defaultVal.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return b
}

// envList reads a comma separated list, falling back to defaultVal.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

// Load returns the embedded defaults overridden by environment variables.
func Load() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile overlays a YAML file on the defaults, then applies environment overrides.
// An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store.KnownFacesDir = envString("ATTENDANCE_KNOWN_FACES_DIR", c.Store.KnownFacesDir)

	c.Ledger.Driver = strings.ToLower(envString("ATTENDANCE_LEDGER", c.Ledger.Driver))
	c.Ledger.File = envString("ATTENDANCE_FILE", c.Ledger.File)
	c.Ledger.DatabaseURL = envString("DATABASE_URL", c.Ledger.DatabaseURL)
	c.Ledger.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", c.Ledger.MaxOpenConns)
	c.Ledger.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", c.Ledger.MaxIdleConns)

	c.Embedding.URL = envString("EMBEDDING_URL", c.Embedding.URL)
	c.Embedding.Timeout = envDuration("EMBEDDING_TIMEOUT", c.Embedding.Timeout)

	c.Recognition.Cooldown = envDuration("ATTENDANCE_COOLDOWN", c.Recognition.Cooldown)
	c.Recognition.DistanceThreshold = envFloat("FACE_DISTANCE_THRESHOLD", c.Recognition.DistanceThreshold)

	c.Camera.Device = envString("CAMERA_DEVICE", c.Camera.Device)
	c.Camera.SnapshotURL = envString("CAMERA_SNAPSHOT_URL", c.Camera.SnapshotURL)
	c.Camera.FramesDir = envString("CAMERA_FRAMES_DIR", c.Camera.FramesDir)
	c.Camera.Interval = envDuration("CAMERA_INTERVAL", c.Camera.Interval)

	c.Display.Headless = envBool("DISPLAY_HEADLESS", c.Display.Headless)
	c.Display.FontPath = envString("DISPLAY_FONT", c.Display.FontPath)

	c.Log.Mode = envString("LOG_MODE", c.Log.Mode)
	c.Log.File = envString("LOG_FILE", c.Log.File)

	c.Web.Host = envString("WEB_HOST", c.Web.Host)
	c.Web.Port = envInt("WEB_PORT", c.Web.Port)
	c.Web.APIToken = envString("WEB_API_TOKEN", c.Web.APIToken)
	c.Web.AllowedOrigins = envList("WEB_ALLOWED_ORIGINS", c.Web.AllowedOrigins)
}

// Validate rejects settings the loop cannot run with.
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "csv":
		if c.Ledger.File == "" {
			return fmt.Errorf("ledger file is required for the csv driver")
		}
	case "postgres", "mysql":
		if c.Ledger.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s ledger", c.Ledger.Driver)
		}
	default:
		return fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver)
	}
	if c.Store.KnownFacesDir == "" {
		return fmt.Errorf("known faces directory is required")
	}
	if c.Recognition.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", c.Recognition.Cooldown)
	}
	if c.Recognition.DistanceThreshold <= 0 || c.Recognition.DistanceThreshold > 2 {
		return fmt.Errorf("distance threshold must be in (0, 2], got %g", c.Recognition.DistanceThreshold)
	}
	return nil
}
