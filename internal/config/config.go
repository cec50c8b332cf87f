package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	RateLimit  RateLimit   `mapstructure:"rate_limit"`
	ICEServers []ICEServer `mapstructure:"ice_servers"`
	Call       Call        `mapstructure:"call"`
	Client     Client      `mapstructure:"client"`
}

// RateLimit bounds inbound signaling frames per participant.
type RateLimit struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Call struct {
	OutgoingTimeout    time.Duration `mapstructure:"outgoing_timeout"`
	ICESoftLimit       int           `mapstructure:"ice_soft_limit"`
	ICEHardLimit       int           `mapstructure:"ice_hard_limit"`
	ICECleanupInterval time.Duration `mapstructure:"ice_cleanup_interval"`
}

type Client struct {
	ServerURL string `mapstructure:"server_url"`
	Identity  string `mapstructure:"identity"`
	Username  string `mapstructure:"username"`
	Deny      bool   `mapstructure:"deny_media"`
}

const envPrefix = "VOICE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("log_level", "info")

	v.SetDefault("rate_limit.per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("call.outgoing_timeout", "30s")
	v.SetDefault("call.ice_soft_limit", 20)
	v.SetDefault("call.ice_hard_limit", 50)
	v.SetDefault("call.ice_cleanup_interval", "10s")

	v.SetDefault("client.server_url", "ws://localhost:8080/api/ws/signal")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func configFile() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("config/config.%s.yaml", env)
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults. VOICE_*
// environment variables override both.
func Load() (*Config, error) {
	return load(newViper(), configFile())
}

// LoadWithFlags is Load with flags bound on top, for the softphone CLI.
// Flag names use the config keys, e.g. --client.identity.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	file := configFile()
	if f := flags.Lookup("config"); f != nil && f.Changed {
		file = f.Value.String()
	}
	return load(v, file)
}

func load(v *viper.Viper, fileName string) (*Config, error) {
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Call.OutgoingTimeout <= 0 {
		return fmt.Errorf("call.outgoing_timeout must be positive, got %s", c.Call.OutgoingTimeout)
	}
	if c.Call.ICESoftLimit < 0 || c.Call.ICEHardLimit < 0 {
		return fmt.Errorf("call ice limits must not be negative")
	}
	if c.Call.ICEHardLimit > 0 && c.Call.ICESoftLimit > c.Call.ICEHardLimit {
		return fmt.Errorf("call.ice_soft_limit (%d) exceeds call.ice_hard_limit (%d)", c.Call.ICESoftLimit, c.Call.ICEHardLimit)
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	return nil
}
