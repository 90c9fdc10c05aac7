package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Initialize creates the configuration directory and writes the default
// config.yaml if there isn't one yet.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(path, ConfigurationName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
		logger.Printf("Wrote default configuration to %s\n", configPath)
	}

	return Load(path)
}

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return LoadFs(afero.NewBasePathFs(afero.NewOsFs(), path))
}

// LoadFs loads the configuration from the root of configFs, falling back to
// the defaults if there's no config.yaml. All files the shell keeps are
// created in configFs.
func LoadFs(configFs afero.Fs) (*Configuration, error) {
	out := defaultConfig()

	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	switch {
	case os.IsNotExist(err):
		// Use the defaults.
	case err != nil:
		return nil, err
	default:
		// Keys left out of the file keep their defaults. injected_args is
		// replaced as a whole rather than merged.
		defaultArgs := out.InjectedArgs
		out.InjectedArgs = nil
		if err := yaml.UnmarshalStrict(configContents, out); err != nil {
			return nil, err
		}
		if out.InjectedArgs == nil {
			out.InjectedArgs = defaultArgs
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	out.configFs = configFs
	return out, nil
}
