// Copyright (C) 2017 Librato, Inc. All rights reserved.

package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	envProbersConfigFile = "PROBERS_CONFIG_FILE"
	maxConfigFileSize    = 1024 * 1024 // 1MB
)

// looked up in the working directory, in order
var configFileNames = []string{"probers.yaml", "probers.yml", "probers.toml"}

var decoders = map[string]func([]byte, interface{}) error{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".toml": toml.Unmarshal,
}

// configPath returns the absolute path of the config file, or "" if there
// is none.
func configPath() string {
	if path, ok := os.LookupEnv(envProbersConfigFile); ok {
		abs, err := filepath.Abs(path)
		if err == nil {
			return abs
		}
		log.Warningf("Ignore config file %s: %s", path, err)
	}
	for _, name := range configFileNames {
		abs, err := filepath.Abs(name)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
	}
	return ""
}

// loadFile decodes the config file into c. The decoders modify c in place,
// so any decoding error is fatal.
func loadFile(c *Config) error {
	path := configPath()
	if path == "" {
		log.Debug("No config file found.")
		return nil
	}

	decode, ok := decoders[filepath.Ext(path)]
	if !ok {
		return errors.Wrap(ErrUnsupportedFormat, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "loadFile")
	}
	if fi.Size() > maxConfigFileSize {
		return errors.Wrapf(ErrFileTooLarge, "%s has %d bytes", path, fi.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "loadFile")
	}

	log.Infof("Loading config file: %s", path)
	return errors.Wrapf(decode(data, c), "decoding %s", path)
}
