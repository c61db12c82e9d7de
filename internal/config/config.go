package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/resolver"
	"github.com/rohmanhakim/playlist-resolver/internal/textconv"
	"github.com/rohmanhakim/playlist-resolver/pkg/retry"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//===============
	// Resolution
	//===============
	// Maximum nesting of playlists inside playlists
	maxDepth int
	// Whether nested playlists are followed at all
	recurse bool
	// Skip handlers that read local directories or launchers
	disableUnsafe bool
	// Always classify from content instead of trusting the name
	force bool
	// Report an unreadable top-level reference as a single entry
	fallback bool
	// How many bytes are fetched to classify content
	prefixBytes int

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Output
	//===============
	// debug, info, warn or error
	logLevel string
	// text, logfmt or json
	logFormat string
	// html keeps feed descriptions as published, markdown converts them
	descriptionFormat string
}

type configDTO struct {
	MaxDepth               *int          `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	Recurse                *bool         `json:"recurse,omitempty" yaml:"recurse,omitempty"`
	DisableUnsafe          bool          `json:"disableUnsafe,omitempty" yaml:"disableUnsafe,omitempty"`
	Force                  bool          `json:"force,omitempty" yaml:"force,omitempty"`
	Fallback               bool          `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	PrefixBytes            int           `json:"prefixBytes,omitempty" yaml:"prefixBytes,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty" yaml:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty" yaml:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty" yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	LogLevel               string        `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat              string        `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	DescriptionFormat      string        `json:"descriptionFormat,omitempty" yaml:"descriptionFormat,omitempty"`
}

// constraints mirrors Config with the validation rules applied on Build.
type constraints struct {
	MaxDepth               int           `validate:"gte=0,lte=64"`
	PrefixBytes            int           `validate:"gte=512,lte=1048576"`
	BaseDelay              time.Duration `validate:"gte=0"`
	Jitter                 time.Duration `validate:"gte=0"`
	MaxAttempt             int           `validate:"gte=1,lte=100"`
	BackoffInitialDuration time.Duration `validate:"gt=0"`
	BackoffMultiplier      float64       `validate:"gte=1"`
	BackoffMaxDuration     time.Duration `validate:"gtefield=BackoffInitialDuration"`
	Timeout                time.Duration `validate:"gt=0"`
	UserAgent              string        `validate:"required"`
	LogLevel               string        `validate:"oneof=debug info warn error"`
	LogFormat              string        `validate:"oneof=text logfmt json"`
	DescriptionFormat      string        `validate:"oneof=html markdown"`
}

var validate = validator.New()

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	// only override when a value is provided
	if dto.MaxDepth != nil {
		cfg.maxDepth = *dto.MaxDepth
	}
	if dto.Recurse != nil {
		cfg.recurse = *dto.Recurse
	}
	cfg.disableUnsafe = dto.DisableUnsafe
	cfg.force = dto.Force
	cfg.fallback = dto.Fallback
	if dto.PrefixBytes != 0 {
		cfg.prefixBytes = dto.PrefixBytes
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.LogLevel != "" {
		cfg.logLevel = strings.ToLower(dto.LogLevel)
	}
	if dto.LogFormat != "" {
		cfg.logFormat = strings.ToLower(dto.LogFormat)
	}
	if dto.DescriptionFormat != "" {
		cfg.descriptionFormat = strings.ToLower(dto.DescriptionFormat)
	}

	return cfg.Build()
}

// WithConfigFile loads a JSON file, or a YAML file when the extension is
// .yaml or .yml. Fields missing from the file keep their defaults. In JSON,
// durations are nanoseconds; YAML also accepts strings such as "10s".
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		maxDepth:               resolver.DefaultMaxDepth,
		recurse:                true,
		disableUnsafe:          false,
		force:                  false,
		fallback:               false,
		prefixBytes:            resolver.DefaultPrefixBytes,
		baseDelay:              500 * time.Millisecond,
		jitter:                 100 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     5 * time.Second,
		timeout:                15 * time.Second,
		userAgent:              "playlist-resolver/1.0",
		logLevel:               "info",
		logFormat:              "logfmt",
		descriptionFormat:      string(textconv.FormatHTML),
	}
	return &defaultConfig
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithRecurse(recurse bool) *Config {
	c.recurse = recurse
	return c
}

func (c *Config) WithDisableUnsafe(disableUnsafe bool) *Config {
	c.disableUnsafe = disableUnsafe
	return c
}

func (c *Config) WithForce(force bool) *Config {
	c.force = force
	return c
}

func (c *Config) WithFallback(fallback bool) *Config {
	c.fallback = fallback
	return c
}

func (c *Config) WithPrefixBytes(n int) *Config {
	c.prefixBytes = n
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = strings.ToLower(level)
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = strings.ToLower(format)
	return c
}

func (c *Config) WithDescriptionFormat(format string) *Config {
	c.descriptionFormat = strings.ToLower(format)
	return c
}

func (c *Config) Build() (Config, error) {
	err := validate.Struct(constraints{
		MaxDepth:               c.maxDepth,
		PrefixBytes:            c.prefixBytes,
		BaseDelay:              c.baseDelay,
		Jitter:                 c.jitter,
		MaxAttempt:             c.maxAttempt,
		BackoffInitialDuration: c.backoffInitialDuration,
		BackoffMultiplier:      c.backoffMultiplier,
		BackoffMaxDuration:     c.backoffMaxDuration,
		Timeout:                c.timeout,
		UserAgent:              c.userAgent,
		LogLevel:               c.logLevel,
		LogFormat:              c.logFormat,
		DescriptionFormat:      c.descriptionFormat,
	})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return *c, nil
}

func (c Config) MaxDepth() int {
	return c.maxDepth
}

func (c Config) Recurse() bool {
	return c.recurse
}

func (c Config) DisableUnsafe() bool {
	return c.disableUnsafe
}

func (c Config) Force() bool {
	return c.force
}

func (c Config) Fallback() bool {
	return c.fallback
}

func (c Config) PrefixBytes() int {
	return c.prefixBytes
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}

func (c Config) DescriptionFormat() textconv.Format {
	return textconv.Format(c.descriptionFormat)
}

// ResolveParam is the per-call resolution policy this configuration asks for.
func (c Config) ResolveParam() resolver.ResolveParam {
	return resolver.NewResolveParam(c.maxDepth, c.recurse, c.disableUnsafe, c.force, c.fallback)
}

func (c Config) RetryParam() retry.RetryParam {
	return retry.NewRetryParam(
		c.baseDelay,
		c.jitter,
		c.randomSeed,
		c.maxAttempt,
		timeutil.NewBackoffParam(c.backoffInitialDuration, c.backoffMultiplier, c.backoffMaxDuration),
	)
}

func (c Config) HTTPParam() fetcher.HTTPParam {
	return fetcher.NewHTTPParam(c.userAgent, c.timeout, c.RetryParam())
}
