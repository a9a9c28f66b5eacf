package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ironsheep/image-adjust-mcp/internal/config"
)

// badHistoryEnv loads a configuration whose history limit does not parse.
func badHistoryEnv(t *testing.T) (config.Config, error) {
	t.Helper()
	cfg, err := config.FromEnv(func(key string) (string, bool) {
		if key == config.EnvHistoryLimit {
			return "many", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected an environment error")
	}
	return cfg, err
}

func TestRootCmd_BadEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"version still works", []string{"version"}, ""},
		{"help still works", []string{"--help"}, ""},
		{"server refuses to start", nil, config.EnvHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, envErr := badHistoryEnv(t)
			root := newRootCmd(&cfg, envErr)
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs(tt.args)

			err := root.Execute()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestRootCmd_FlagsRegistered(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg, nil)
	for _, name := range []string{"output-dir", "log-level", "geometry-policy", "history-limit", "fetch-timeout", "max-fetch-bytes"} {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
}
