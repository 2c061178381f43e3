package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

// Config - Application configuration
type Config struct {
	Gallery struct {
		Endpoint    string `yaml:"endpoint" env:"GALLERY_ENDPOINT"`
		Title       string `yaml:"title" default:"Image Gallery" env:"GALLERY_TITLE"`
		ProbeImages bool   `yaml:"probe_images" default:"false" env:"GALLERY_PROBE_IMAGES"` // Check image URLs before rendering
	} `yaml:"gallery"`
	Fetch struct {
		Timeout    int    `yaml:"timeout" default:"0" env:"FETCH_TIMEOUT"` // Timeout in seconds, 0 waits forever
		UserAgent  string `yaml:"user_agent" default:"sheet-gallery/1.0" env:"FETCH_USER_AGENT"`
		MaxWorkers int    `yaml:"max_workers" default:"8" env:"FETCH_MAX_WORKERS"` // Parallel image probes
	} `yaml:"fetch"`
	Server struct {
		Addr string `yaml:"addr" default:":8080" env:"SERVER_ADDR"`
	} `yaml:"server"`
	MCP struct {
		Timeout int `yaml:"timeout" default:"30" env:"MCP_TIMEOUT"` // Seconds per load_gallery call, 0 disables
	} `yaml:"mcp"`
	Log struct {
		Debug bool `yaml:"debug" default:"false" env:"LOG_DEBUG"`
	} `yaml:"log"`
}

// LoadConfig - Load configuration file. A .env file in the working directory is
// read first when present, so its values are visible to the env tags.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	var files []string
	if path != "" {
		files = append(files, path)
	}
	err := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	}).Load(cfg, files...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have no usable default.
func (c *Config) Validate() error {
	if c.Gallery.Endpoint == "" {
		return errors.New("gallery.endpoint (GALLERY_ENDPOINT) is required")
	}
	if c.Fetch.Timeout < 0 {
		return errors.Newf("fetch.timeout must not be negative, got %d", c.Fetch.Timeout)
	}
	if c.MCP.Timeout < 0 {
		return errors.Newf("mcp.timeout must not be negative, got %d", c.MCP.Timeout)
	}
	if c.Fetch.MaxWorkers <= 0 {
		return errors.Newf("fetch.max_workers must be positive, got %d", c.Fetch.MaxWorkers)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}
