package config

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())

	injected, err := cfg.ParsedInjectedArgs()
	assert.Nil(t, err)
	assert.Equal(t, map[string][]string{"ls": {"--color=auto"}}, injected)
}

func TestLoadFs(t *testing.T) {
	cases := map[string]struct {
		contents string
		wantErr  bool
	}{
		"valid": {
			contents: "prompt: '$ '\ncolor: never\nevent_log: false\ninjected_args:\n  grep: --color=auto -n\n",
		},
		"unknown-field": {
			contents: "prompt: '$ '\ncolor: never\nbogus: 1\n",
			wantErr:  true,
		},
		"bad-color": {
			contents: "prompt: '$ '\ncolor: sometimes\n",
			wantErr:  true,
		},
		"empty-prompt": {
			contents: "prompt: ''\ncolor: never\n",
			wantErr:  true,
		},
		"bad-injected-args": {
			contents: "prompt: '$ '\ncolor: never\ninjected_args:\n  ls: '\"--unterminated'\n",
			wantErr:  true,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			assert.Nil(t, afero.WriteFile(fs, ConfigurationName, []byte(tc.contents), 0600))

			cfg, err := LoadFs(fs)
			if tc.wantErr {
				assert.NotNil(t, err)
				return
			}

			assert.Nil(t, err)
			assert.Equal(t, "$ ", cfg.Prompt)
			assert.Equal(t, ColorNever, cfg.Color)
			assert.False(t, cfg.EventLog)

			injected, err := cfg.ParsedInjectedArgs()
			assert.Nil(t, err)
			assert.Equal(t, []string{"--color=auto", "-n"}, injected["grep"])
			assert.NotContains(t, injected, "ls")
		})
	}
}

func TestLoadFs_partialConfig(t *testing.T) {
	defaults := defaultConfig()

	cases := map[string]struct {
		contents     string
		wantPrompt   string
		wantInjected map[string]string
	}{
		"only-prompt": {
			contents:     "prompt: '$ '\n",
			wantPrompt:   "$ ",
			wantInjected: defaults.InjectedArgs,
		},
		"only-color": {
			contents:     "color: never\n",
			wantPrompt:   defaults.Prompt,
			wantInjected: defaults.InjectedArgs,
		},
		"no-injection": {
			contents:     "injected_args: {}\n",
			wantPrompt:   defaults.Prompt,
			wantInjected: map[string]string{},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			assert.Nil(t, afero.WriteFile(fs, ConfigurationName, []byte(tc.contents), 0600))

			cfg, err := LoadFs(fs)

			assert.Nil(t, err)
			assert.Equal(t, tc.wantPrompt, cfg.Prompt)
			assert.Equal(t, tc.wantInjected, cfg.InjectedArgs)
			if tn != "only-color" {
				assert.Equal(t, defaults.Color, cfg.Color)
			}
			assert.Equal(t, defaults.EventLog, cfg.EventLog)
		})
	}
}

func TestHomeDir_unset(t *testing.T) {
	t.Setenv("HOME", "")

	_, err := HomeDir()

	assert.NotNil(t, err)
	assert.NotContains(t, err.Error(), "failed to retrieve home directory")
}

func TestLoadFs_missingConfig(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs())

	assert.Nil(t, err)
	assert.Equal(t, defaultConfig().Prompt, cfg.Prompt)
}

func TestHistory(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs())
	assert.Nil(t, err)

	t.Run("missing log is empty", func(t *testing.T) {
		data, err := cfg.ReadHistory()
		assert.Nil(t, err)
		assert.Empty(t, data)

		entries, err := cfg.HistoryEntries()
		assert.Nil(t, err)
		assert.Empty(t, entries)
	})

	t.Run("append keeps order", func(t *testing.T) {
		for _, line := range []string{"ls", "cd /tmp", "echo ${pwd} | cat"} {
			assert.Nil(t, cfg.AppendHistory(line))
		}

		data, err := cfg.ReadHistory()
		assert.Nil(t, err)
		assert.Equal(t, "ls\ncd /tmp\necho ${pwd} | cat\n", string(data))

		entries, err := cfg.HistoryEntries()
		assert.Nil(t, err)
		assert.Equal(t, []string{"ls", "cd /tmp", "echo ${pwd} | cat"}, entries)
	})

	t.Run("clear", func(t *testing.T) {
		assert.Nil(t, cfg.ClearHistory())
		assert.Nil(t, cfg.ClearHistory())

		entries, err := cfg.HistoryEntries()
		assert.Nil(t, err)
		assert.Empty(t, entries)
	})
}

func TestInitialize(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", AppName)
	cfg, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, defaultConfig().Prompt, cfg.Prompt)

	t.Run("config written", func(t *testing.T) {
		contents, err := ioutil.ReadFile(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
		assert.Equal(t, defaultConfigData, contents)
	})

	t.Run("Load config file path", func(t *testing.T) {
		_, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()

		fd, err = cfg.ReadAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("history lands in directory", func(t *testing.T) {
		assert.Nil(t, cfg.AppendHistory("pwd"))

		contents, err := ioutil.ReadFile(filepath.Join(tempDir, HistoryName))
		assert.Nil(t, err)
		assert.Equal(t, "pwd\n", string(contents))
	})
}
