package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultWorkspace    = "."
	DefaultListen       = "127.0.0.1:3333"
	DefaultTimeout      = 60 * time.Second
	DefaultRetryMax     = 2
	DefaultMaxBodyBytes = 1 << 20
)

// ClientConfig controls the remote tool client.
type ClientConfig struct {
	RetryMax int `mapstructure:"retry_max"`
}

// ServerConfig controls the HTTP tool server.
type ServerConfig struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Config holds runtime configuration values.
type Config struct {
	Workspace string
	FindRoot  bool
	Verbose   bool
	JSON      bool
	Listen    string
	Remote    string
	Timeout   time.Duration
	Client    ClientConfig
	Server    ServerConfig
}

type rawConfig struct {
	Workspace string       `mapstructure:"workspace"`
	FindRoot  bool         `mapstructure:"find_root"`
	Verbose   bool         `mapstructure:"verbose"`
	JSON      bool         `mapstructure:"json"`
	Listen    string       `mapstructure:"listen"`
	Remote    string       `mapstructure:"remote"`
	Timeout   string       `mapstructure:"timeout"`
	Client    ClientConfig `mapstructure:"client"`
	Server    ServerConfig `mapstructure:"server"`
}

// Load resolves configuration from defaults, config files, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WSTOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("workspace", DefaultWorkspace)
	v.SetDefault("find_root", false)
	v.SetDefault("verbose", false)
	v.SetDefault("json", false)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("remote", "")
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("client.retry_max", DefaultRetryMax)
	v.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)

	if cmd != nil {
		bindFlag(v, cmd, "workspace", "workspace")
		bindFlag(v, cmd, "find_root", "find-root")
		bindFlag(v, cmd, "verbose", "verbose")
		bindFlag(v, cmd, "json", "json")
		bindFlag(v, cmd, "listen", "listen")
		bindFlag(v, cmd, "remote", "remote")
		bindFlag(v, cmd, "timeout", "timeout")
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", WeaklyTypedInput: true, Result: &raw})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	cfg := Config{
		Workspace: raw.Workspace,
		FindRoot:  raw.FindRoot,
		Verbose:   raw.Verbose,
		JSON:      raw.JSON,
		Listen:    raw.Listen,
		Remote:    strings.TrimRight(raw.Remote, "/"),
		Timeout:   timeout,
		Client:    raw.Client,
		Server:    raw.Server,
	}

	if cfg.Workspace == "" {
		cfg.Workspace = DefaultWorkspace
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client.RetryMax < 0 {
		cfg.Client.RetryMax = 0
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return cfg, nil
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if f := cmd.Flags().Lookup(flag); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

func loadConfigFile(v *viper.Viper) error {
	if explicit := os.Getenv("WSTOOLS_CONFIG"); explicit != "" {
		v.SetConfigFile(explicit)
		return v.ReadInConfig()
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "ws-tools")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
