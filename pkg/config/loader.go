package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TESTBRIDGE_"

// Load assembles the configuration: defaults first, then the YAML file at
// path (when non-empty), then TESTBRIDGE_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile reads a YAML document and merges it over the defaults.
func loadFile(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := k.Load(rawbytes.Provider(data), yamlParser{}); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// yamlParser adapts goccy yaml to koanf's parser contract.
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]any) ([]byte, error) {
	return yaml.Marshal(m)
}

// transformEnvKey maps TESTBRIDGE_SERVER_SHUTDOWN_TIMEOUT to
// server.shutdown_timeout: the first segment selects the section, the rest
// keep their underscores.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return "", value
	case 1:
		return parts[0], value
	default:
		return parts[0] + "." + strings.Join(parts[1:], "_"), value
	}
}
