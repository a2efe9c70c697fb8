package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all pulse configuration. Construct one with Default()
// or load a pulse.yaml with Load().
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Digest   DigestConfig   `yaml:"digest"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model       string `yaml:"model"`
	OpenAIKey   string `yaml:"openai_key"`
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`
}

type DigestConfig struct {
	MaxItems    int `yaml:"max_items"`
	WindowHours int `yaml:"window_hours"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38800,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "", // summaries fall back to the deterministic form
			Model:    "gpt-4o-mini",
		},
		Digest: DigestConfig{
			MaxItems:    20,
			WindowHours: 24,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is
// not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
