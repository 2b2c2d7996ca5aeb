package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// maxConfigFileSize bounds config files to prevent resource exhaustion.
const maxConfigFileSize = 1024 * 1024

// envPrefix namespaces docquery environment variables.
const envPrefix = "DOCQUERY_"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in increasing precedence.
//
// Environment variables use the DOCQUERY_ prefix with a double underscore
// separating the section from the field:
//
//	DOCQUERY_CHUNKING__MIN_CHUNK_SIZE -> chunking.min_chunk_size
//	DOCQUERY_VECTORSTORE__HOST        -> vectorstore.host
//	DOCQUERY_EMBEDDING__API_KEY       -> embedding.api_key
//
// configPath may be empty, in which case only defaults and environment
// variables apply.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// DOCQUERY_CHUNKING__MIN_CHUNK_SIZE -> chunking.min_chunk_size
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile opens and reads a config file, enforcing the size limit
// against the already-open descriptor to avoid a stat/read race.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", ErrInvalidConfig, path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return content, nil
}
