package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/fragmentgrid/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "positional path with defaults",
			args: []string{"config/"},
			want: &app.Config{ConfigPath: "config/", LogFormat: "json", LogLevel: "info", WorkerCount: 10},
		},
		{
			name: "long flags",
			args: []string{
				"-config", "main.hcl", "-fragments", "fragments.yaml", "-output", "out.json",
				"-healthcheck-port", "8080", "-log-format", "TEXT", "-log-level", "debug", "-workers", "3",
			},
			want: &app.Config{
				ConfigPath:      "main.hcl",
				FragmentsPath:   "fragments.yaml",
				OutputPath:      "out.json",
				HealthcheckPort: 8080,
				LogFormat:       "text",
				LogLevel:        "debug",
				WorkerCount:     3,
			},
		},
		{
			name: "shorthands",
			args: []string{"-c", "main.hcl", "-f", "f.json", "-o", "o.json"},
			want: &app.Config{ConfigPath: "main.hcl", FragmentsPath: "f.json", OutputPath: "o.json", LogFormat: "json", LogLevel: "info", WorkerCount: 10},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "x"}, wantErr: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "x"}, wantErr: "invalid log-level"},
		{name: "bad workers", args: []string{"-workers", "0", "x"}, wantErr: "invalid workers"},
		{name: "bad port", args: []string{"-healthcheck-port", "-1", "x"}, wantErr: "HealthcheckPort must be between"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}
			got, exit, err := Parse(tc.args, out)

			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Nil(t, got)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
