package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFileName = "tarkan.yaml"

// config is the content of a configuration file:
//
//	start: expr
//	name: calc
//	skip: "[ \t]+"
//	trace: Info
//
// Command-line flags take precedence over it.
type config struct {
	StartRule string `yaml:"start"`
	Name      string `yaml:"name"`

	// SkipPattern is nil when the file doesn't mention it, and an empty string disables skipping.
	SkipPattern *string `yaml:"skip"`

	Trace string `yaml:"trace"`
}

func defaultConfig() *config {
	return &config{
		Trace: "Error",
	}
}

func readConfig(path string) (*config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFileName
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("Cannot read the config file %s: %w", path, err)
	}

	c := defaultConfig()
	err = yaml.Unmarshal(b, c)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse the config file %s: %w", path, err)
	}
	return c, nil
}
