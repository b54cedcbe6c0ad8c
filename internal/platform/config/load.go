package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "APP_"
	defaultConfigDir = "configs"
)

// ErrInvalidProfile rejects profile names that are empty or could escape
// the config directory.
var ErrInvalidProfile = errors.New("invalid profile")

// Option adjusts Load.
type Option func(*loader)

// WithConfigDir reads YAML from dir instead of ./configs.
func WithConfigDir(dir string) Option {
	return func(l *loader) { l.dir = dir }
}

// WithDotEnv seeds the environment from a .env file before the env layer is
// read. Variables already exported win, and a missing file is ignored.
func WithDotEnv(path string) Option {
	return func(l *loader) { l.dotEnv = path }
}

// Load builds the Config for profile from layered sources, later ones winning:
//
//	defaults → {dir}/base.yaml → {dir}/{profile}.yaml → APP_* environment
//
// A .env file named by WithDotEnv is read into the environment first and
// never overrides variables that are already set.
//
// Env names map onto existing keys first, so field names keep their
// underscores:
//
//	APP_SERVER_READ_TIMEOUT             → server.read_timeout
//	APP_STORE_POSTGRES_MAX_CONNS        → store.postgres.max_conns
//	APP_STORE_REMOTE_RETRY_MAX_ATTEMPTS → store.remote.retry.max_attempts
//
// A name matching no known key falls back to one level per underscore.
func Load(profile string, opts ...Option) (*Config, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}

	l := &loader{k: koanf.New("."), dir: defaultConfigDir}
	for _, opt := range opts {
		opt(l)
	}

	layers := []func() error{
		l.loadDefaults,
		func() error { return l.loadYAML("base") },
		func() error { return l.loadYAML(profile) },
		l.loadDotEnv,
		l.loadEnv,
	}
	for _, load := range layers {
		if err := load(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config for profile %q: %w", profile, err)
	}
	return &cfg, nil
}

type loader struct {
	k      *koanf.Koanf
	dir    string
	dotEnv string
}

func (l *loader) loadDefaults() error {
	for key, v := range defaults() {
		if err := l.k.Set(key, v); err != nil {
			return fmt.Errorf("default %s: %w", key, err)
		}
	}
	return nil
}

func (l *loader) loadYAML(name string) error {
	path := filepath.Join(l.dir, name+".yaml")
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func (l *loader) loadDotEnv() error {
	if l.dotEnv == "" {
		return nil
	}
	if err := godotenv.Load(l.dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", l.dotEnv, err)
	}
	return nil
}

func (l *loader) loadEnv() error {
	known := make(map[string]string)
	for _, key := range l.k.Keys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	provider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(name, value string) (string, any) {
			name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
			if key, ok := known[name]; ok {
				return key, value
			}
			return strings.ReplaceAll(name, "_", "."), value
		},
	})
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("reading %s* environment: %w", envPrefix, err)
	}
	return nil
}

func checkProfile(profile string) error {
	switch {
	case strings.TrimSpace(profile) == "":
		return fmt.Errorf("%w: empty", ErrInvalidProfile)
	case strings.ContainsAny(profile, `/\`), strings.Contains(profile, ".."):
		return fmt.Errorf("%w: %q leaves the config directory", ErrInvalidProfile, profile)
	}
	return nil
}
