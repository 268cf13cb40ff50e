package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunChurnKeepsTaskCount(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, size := range elemSizes {
		t.Run(size, func(t *testing.T) {
			cfg := churnConfig{Tasks: 500, Rounds: 20, FreeRatio: 0.5, ReadyRatio: 0.1, Seed: 7, ElemSize: size}
			rep, err := runChurnFor(cfg, logger)
			require.NoError(t, err)

			assert.Equal(t, cfg.Tasks, rep.Metrics.Live)
			assert.Equal(t, cfg.Tasks, rep.Allocs-rep.Frees)
			assert.Equal(t, cfg.Rounds*250, rep.Frees+rep.StaleFrees)
			assert.Positive(t, rep.StaleFrees, "retiring the same slot twice in a round is stale")
			assert.Positive(t, rep.Polled)

			minPages := (cfg.Tasks + rep.Layout.NumValues - 1) / rep.Layout.NumValues
			assert.Equal(t, minPages, rep.Metrics.NumPages, "first fit never grows past what live tasks need")
		})
	}
}

func TestRunChurnDeterministic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := churnConfig{Tasks: 200, Rounds: 10, FreeRatio: 0.5, ReadyRatio: 0.2, Seed: 42, ElemSize: "medium"}

	a, err := runChurnFor(cfg, logger)
	require.NoError(t, err)
	b, err := runChurnFor(cfg, logger)
	require.NoError(t, err)

	a.Elapsed, b.Elapsed = 0, 0
	assert.Equal(t, a, b)
}

func TestChurnCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     string
		wantContain []string
	}{
		{
			name:        "text report",
			args:        []string{"churn", "--tasks", "100", "--rounds", "3"},
			wantContain: []string{"Element:      small", "Live:         100 / "},
		},
		{
			name:    "bad free ratio",
			args:    []string{"churn", "--free-ratio", "1.5"},
			wantErr: "--free-ratio",
		},
		{
			name:    "no tasks",
			args:    []string{"churn", "--tasks", "0"},
			wantErr: "--tasks",
		},
		{
			name:    "unknown size",
			args:    []string{"churn", "--elem-size", "huge"},
			wantErr: "unknown --elem-size",
		},
		{
			name:    "bad log level",
			args:    []string{"churn", "--log-level", "loud"},
			wantErr: "invalid --log-level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestChurnCommandJSON(t *testing.T) {
	out, err := runCmd(t, "churn", "--tasks", "64", "--rounds", "2", "--elem-size", "large", "--json")
	require.NoError(t, err)

	var rep churnReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "large", rep.ElemSize)
	assert.Equal(t, 64, rep.Metrics.Live)
	assert.Equal(t, 16, rep.Metrics.NumPages)
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCmd(t, "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "SLOTS")
	assert.Contains(t, out, "large")

	rows := layouts()
	require.Len(t, rows, 3)
	assert.Equal(t, 64, rows[0].NumValues)
	assert.Equal(t, 4, rows[2].NumValues)
	for _, r := range rows {
		assert.Equal(t, r.Size-r.HeaderSize-r.Padding-r.NumValues*r.ElemSize, r.Wasted)
	}

	out, err = runCmd(t, "layout", "--json")
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 3)
}
