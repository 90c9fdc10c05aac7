package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	AppName           = "myshell"
	ConfigurationName = "config.yaml"
	HistoryName       = "history"
	AppLogName        = "app.log"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs afero.Fs

	Prompt       string            `json:"prompt" validate:"required"`
	Color        string            `json:"color" validate:"oneof=always auto never"`
	EventLog     bool              `json:"event_log"`
	InjectedArgs map[string]string `json:"injected_args"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	_, err := c.ParsedInjectedArgs()
	return err
}

// ParsedInjectedArgs splits the injected_args values into words.
func (c *Configuration) ParsedInjectedArgs() (map[string][]string, error) {
	out := make(map[string][]string)
	for program, raw := range c.InjectedArgs {
		if program == "" {
			return nil, fmt.Errorf("injected_args: empty program name")
		}
		args, err := shlex.Split(raw, true)
		if err != nil {
			return nil, fmt.Errorf("injected_args[%q]: %w", program, err)
		}
		if len(args) > 0 {
			out[program] = args
		}
	}
	return out, nil
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// ReadHistory returns the persisted history log, one entry per line. A missing
// log reads as empty.
func (c *Configuration) ReadHistory() ([]byte, error) {
	data, err := afero.ReadFile(c.fs(), HistoryName)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// HistoryEntries returns the persisted history in chronological order.
func (c *Configuration) HistoryEntries() ([]string, error) {
	data, err := c.ReadHistory()
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// AppendHistory adds a line to the end of the history log.
func (c *Configuration) AppendHistory(line string) error {
	fd, err := c.fs().OpenFile(HistoryName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	line = strings.ReplaceAll(line, "\n", " ")
	if _, err := fmt.Fprintln(fd, line); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// ClearHistory removes every entry from the history log.
func (c *Configuration) ClearHistory() error {
	err := c.fs().Remove(HistoryName)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// DefaultDir gets the per-user configuration directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// HomeDir gets the user's home directory.
func HomeDir() (string, error) {
	return os.UserHomeDir()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
