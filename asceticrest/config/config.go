package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/locator"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/identitymap"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/rest"
	encoders "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/infrastructure"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/transport/httptransport"
)

// Route names contain dots ("users.index"), so nested keys are separated by
// keyDelimiter instead of viper's default.
const keyDelimiter = "::"

const DefaultEnvPrefix = "RESTQ"

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type RouteConfig struct {
	Method   string `mapstructure:"method"`
	Template string `mapstructure:"template"`
}

type IdentityMapConfig struct {
	Size      int    `mapstructure:"size"`
	Isolation string `mapstructure:"isolation"`
}

type Config struct {
	BaseURL     string                 `mapstructure:"base_url"`
	Dialect     string                 `mapstructure:"dialect"`
	SnakeCase   bool                   `mapstructure:"snake_case_includes"`
	PerPage     int                    `mapstructure:"per_page"`
	Limit       int                    `mapstructure:"limit"`
	Timeout     time.Duration          `mapstructure:"timeout"`
	StrictReads bool                   `mapstructure:"strict_reads"`
	RateLimit   RateLimitConfig        `mapstructure:"rate_limit"`
	Headers     map[string]string      `mapstructure:"headers"`
	Routes      map[string]RouteConfig `mapstructure:"routes"`
	Log         LogConfig              `mapstructure:"log"`
	IdentityMap IdentityMapConfig      `mapstructure:"identity_map"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("dialect", encoders.SimpleEncoderName)
	v.SetDefault("snake_case_includes", false)
	v.SetDefault("per_page", 30)
	v.SetDefault("limit", 100)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("strict_reads", false)
	v.SetDefault(key("rate_limit", "rps"), 0)
	v.SetDefault(key("rate_limit", "burst"), 1)
	v.SetDefault(key("log", "level"), "INFO")
	v.SetDefault(key("log", "format"), "text")
	v.SetDefault(key("log", "add_source"), false)
	v.SetDefault(key("identity_map", "size"), identitymap.DefaultSize)
	v.SetDefault(key("identity_map", "isolation"), identitymap.ReadUncommitted.String())
}

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// Load reads the optional config file at path (yaml, json or toml by
// extension) and applies environment overrides such as RESTQ_BASE_URL or
// RESTQ_RATE_LIMIT_RPS. An empty envPrefix means DefaultEnvPrefix.
func Load(path, envPrefix string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)

	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Encoder(); err != nil {
		return errors.Wrap(err, "config: dialect")
	}
	if _, err := identitymap.ParseIsolationLevel(c.IdentityMap.Isolation); err != nil {
		return errors.Wrap(err, "config: identity_map")
	}
	if c.PerPage < 0 || c.Limit < 0 {
		return errors.New("config: per_page and limit must not be negative")
	}
	return nil
}

func (c *Config) Encoder() (encoders.Encoder, error) {
	var opts []encoders.EncoderOption
	if c.SnakeCase {
		opts = append(opts, encoders.WithSnakeCaseIncludes())
	}
	return encoders.EncoderByName(c.Dialect, opts...)
}

func (c *Config) Router() (*httptransport.Router, error) {
	routes := make(map[string]httptransport.Route, len(c.Routes))
	for name, route := range c.Routes {
		routes[name] = httptransport.Route{Method: route.Method, Template: route.Template}
	}
	return httptransport.NewRouterFromRoutes(routes)
}

func (c *Config) Transport() (*httptransport.Transport, error) {
	if c.BaseURL == "" {
		return nil, errors.New("config: base_url is required")
	}
	router, err := c.Router()
	if err != nil {
		return nil, err
	}
	opts := []httptransport.Option{
		httptransport.WithTimeout(c.Timeout),
		httptransport.WithRateLimit(c.RateLimit.RPS, c.RateLimit.Burst),
	}
	for name, value := range c.Headers {
		opts = append(opts, httptransport.WithHeader(name, value))
	}
	return httptransport.New(c.BaseURL, router, opts...)
}

func (c *Config) SessionOptions() ([]rest.Option, error) {
	level, err := identitymap.ParseIsolationLevel(c.IdentityMap.Isolation)
	if err != nil {
		return nil, errors.Wrap(err, "config: identity_map")
	}
	size := c.IdentityMap.Size
	if size <= 0 {
		size = identitymap.DefaultSize
	}
	return []rest.Option{rest.WithIdentityMap(size, level)}, nil
}

func (c *Config) ConnectionOptions() ([]locator.Option, error) {
	encoder, err := c.Encoder()
	if err != nil {
		return nil, errors.Wrap(err, "config: dialect")
	}
	opts := []locator.Option{locator.WithEncoder(encoder)}
	if c.StrictReads {
		opts = append(opts, locator.WithStrictReads())
	}
	return opts, nil
}
