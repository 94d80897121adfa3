package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Flags set on the command line win over
// values from the file.
type Config struct {
	Definitions string      `yaml:"definitions"`
	Form        string      `yaml:"form"`
	Engine      string      `yaml:"engine"`
	OpenAPI     string      `yaml:"openapi"`
	LogLevel    string      `yaml:"log_level"`
	Renderer    string      `yaml:"renderer"`
	Run         RunConfig   `yaml:"run"`
	Serve       ServeConfig `yaml:"serve"`
}

// RunConfig configures the terminal wizard.
type RunConfig struct {
	Output string `yaml:"output"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr      string      `yaml:"addr"`
	BasePath  string      `yaml:"base_path"`
	Title     string      `yaml:"title"`
	Templates string      `yaml:"templates"`
	Theme     ThemeConfig `yaml:"theme"`
}

// ThemeConfig feeds design tokens to the HTML renderer.
type ThemeConfig struct {
	Name     string                       `yaml:"name"`
	Variant  string                       `yaml:"variant"`
	Tokens   map[string]string            `yaml:"tokens"`
	Variants map[string]map[string]string `yaml:"variants"`
}

func defaultConfig() Config {
	return Config{
		Form:     "checkout",
		Engine:   "jsonschema",
		LogLevel: "warn",
		Run:      RunConfig{Output: "json"},
		Serve:    ServeConfig{Addr: ":8080", BasePath: "/wizard"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cfg *Config, flags *pflag.FlagSet) {
	set := func(name string, dst *string) {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			*dst = flag.Value.String()
		}
	}
	set("defs", &cfg.Definitions)
	set("form", &cfg.Form)
	set("engine", &cfg.Engine)
	set("openapi", &cfg.OpenAPI)
	set("log-level", &cfg.LogLevel)
	set("renderer", &cfg.Renderer)
	set("output", &cfg.Run.Output)
	set("addr", &cfg.Serve.Addr)
	set("base-path", &cfg.Serve.BasePath)
	set("title", &cfg.Serve.Title)
	set("templates", &cfg.Serve.Templates)
}
