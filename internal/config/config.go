// Package config loads watchbuddy.toml from the data directory, with
// WATCHBUDDY_* environment overrides and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sethgrid/watchbuddy/internal/pet"
)

const FileName = "watchbuddy.toml"

type Config struct {
	TickInterval time.Duration  `mapstructure:"tick_interval"`
	Storage      StorageConfig  `mapstructure:"storage"`
	Log          LogConfig      `mapstructure:"log"`
	Shop         ShopConfig     `mapstructure:"shop"`
	Activity     ActivityConfig `mapstructure:"activity"`
	Wellbeing    string         `mapstructure:"wellbeing"`
}

type StorageConfig struct {
	// Backend is "toml" or "sqlite".
	Backend string `mapstructure:"backend"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"` // console | json
	Output string        `mapstructure:"output"` // stdout | file | both
	File   LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxAge     int    `mapstructure:"max_age"`  // days
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// ShopConfig overrides catalog prices. Zero keeps the default price.
type ShopConfig struct {
	Kibble     int `mapstructure:"kibble"`
	Treat      int `mapstructure:"treat"`
	Fruit      int `mapstructure:"fruit"`
	Ball       int `mapstructure:"ball"`
	Rope       int `mapstructure:"rope"`
	SqueakyToy int `mapstructure:"squeaky_toy"`
}

type ActivityConfig struct {
	// CSV is an exported sample log read by `sync` and `run`.
	CSV           string        `mapstructure:"csv"`
	SleepLookback time.Duration `mapstructure:"sleep_lookback"`
	SyncOnStart   bool          `mapstructure:"sync_on_start"`
}

// Load reads FileName from dataDir when present. explicitPath, when set,
// must exist.
func Load(dataDir, explicitPath string) (*Config, error) {
	v := viper.New()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(dataDir)
	}

	v.SetEnvPrefix("WATCHBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, dataDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("tick_interval", "5s")
	v.SetDefault("wellbeing", "average")

	v.SetDefault("storage.backend", "toml")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file.path", filepath.Join(dataDir, "logs"))
	v.SetDefault("log.file.filename", "watchbuddy.log")
	v.SetDefault("log.file.max_size", 10)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("shop.kibble", 0)
	v.SetDefault("shop.treat", 0)
	v.SetDefault("shop.fruit", 0)
	v.SetDefault("shop.ball", 0)
	v.SetDefault("shop.rope", 0)
	v.SetDefault("shop.squeaky_toy", 0)

	v.SetDefault("activity.csv", "")
	v.SetDefault("activity.sleep_lookback", "24h")
	v.SetDefault("activity.sync_on_start", true)
}

func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	switch c.Storage.Backend {
	case "toml", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be toml or sqlite, got %q", c.Storage.Backend)
	}
	if c.Activity.SleepLookback <= 0 {
		return fmt.Errorf("activity.sleep_lookback must be positive, got %s", c.Activity.SleepLookback)
	}
	return nil
}

// Catalog applies the configured price overrides to the default catalog.
func (c *Config) Catalog() pet.Catalog {
	return pet.DefaultCatalog().Merge(pet.Catalog{
		Food: map[pet.FoodKind]int{
			pet.Kibble: c.Shop.Kibble,
			pet.Treat:  c.Shop.Treat,
			pet.Fruit:  c.Shop.Fruit,
		},
		Toys: map[pet.ToyKind]int{
			pet.Ball:       c.Shop.Ball,
			pet.Rope:       c.Shop.Rope,
			pet.SqueakyToy: c.Shop.SqueakyToy,
		},
	})
}

const defaultFile = `# watchbuddy configuration
tick_interval = "5s"
wellbeing = "average"

[storage]
backend = "toml"

[log]
level = "info"
format = "console"
output = "file" # stdout | file | both

[shop]
# Unit prices in pet points. 0 keeps the built-in price.
kibble = 0
treat = 0
fruit = 0
ball = 0
rope = 0
squeaky_toy = 0

[activity]
csv = ""
sleep_lookback = "24h"
sync_on_start = true
`

// WriteDefault creates a commented config file in dataDir unless one exists.
func WriteDefault(dataDir string) (string, error) {
	path := filepath.Join(dataDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultFile), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
