package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BLOCKBRIDGE_"

// Load reads configuration, then applies environment overrides.
// Search order: customPath -> ~/.blockbridge/config.yaml -> ./configs/blockbridge.yaml -> embedded default
// Values missing from a file keep their defaults.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func loadFile(customPath string) (Config, error) {
	if customPath != "" {
		cfg := Default()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// A broken user or local file falls through to the next candidate.
	for _, path := range []string{userConfigPath(), filepath.Join("configs", "blockbridge.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return Default(), nil
	}
	return cfg, nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockbridge", "config.yaml")
}

// LoadEnvFile loads .env style files into the process environment. Missing
// files are not an error; variables already set are left alone.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any BLOCKBRIDGE_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookupEnv("ENDPOINT"); ok {
		cfg.Connection.Endpoint = v
	}
	if v, ok := lookupEnv("CONNECT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCONNECT_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Connection.ConnectTimeout = d
	}
	if v, ok := lookupEnv("WORLD_SCHEME"); ok {
		cfg.Commands.WorldScheme = v
	}
	if v, ok := lookupEnv("MAX_MESSAGE_LENGTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_MESSAGE_LENGTH: %w", envPrefix, err)
		}
		cfg.Commands.MaxMessageLength = n
	}
	if v, ok := lookupEnv("EXTRA_DENIED_COMMANDS"); ok {
		denied := []string{}
		for _, cmd := range strings.Split(v, ",") {
			if cmd = strings.TrimSpace(cmd); cmd != "" {
				denied = append(denied, cmd)
			}
		}
		cfg.Commands.ExtraDeniedCommands = denied
	}
	if v, ok := lookupEnv("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Queries.RequestTimeout = d
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
