package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix stripped from environment variables.
const DefaultEnvPrefix = "TOKENGATE_"

// Loader merges configuration layers into a target struct via koanf
// field tags.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces the TOKENGATE_ environment prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile adds a YAML file as a layer. Without it the loader
// reads environment variables over the target's defaults only.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// NewLoader returns a loader with no layers read yet.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the configured layers and unmarshals the merged result
// into target. Fields absent from every layer keep whatever value
// target already holds, which is how defaults work.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("confloader: read %s: %w", l.filePath, err)
		}
	}

	p := env.Provider(l.envPrefix, ".", l.envToKey)
	if err := l.k.Load(p, nil); err != nil {
		return fmt.Errorf("confloader: read environment: %w", err)
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("confloader: unmarshal: %w", err)
	}
	return nil
}

// envToKey maps an environment variable name to a config key. Double
// underscores separate sections so single underscores survive inside
// key names: TOKENGATE_SERVER__HTTP__DISPATCH_PATH becomes
// server.http.dispatch_path.
func (l *Loader) envToKey(name string) string {
	name = strings.TrimPrefix(name, l.envPrefix)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, "__", ".")
}
