package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file share the package-level logging state and must not run
// in parallel.

func initLogging(t *testing.T, cfg logging.Config) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "photodedup.log")
	}
	require.NoError(t, logging.Init(cfg))
	t.Cleanup(func() {
		assert.NoError(t, logging.Close())
	})
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{input: "debug", want: logging.LevelDebug},
		{input: "INFO", want: logging.LevelInfo},
		{input: "", want: logging.LevelInfo},
		{input: "warning", want: logging.LevelWarn},
		{input: "warn", want: logging.LevelWarn},
		{input: " error ", want: logging.LevelError},
		{input: "verbose", want: logging.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, logging.ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", logging.LevelDebug.String())
	assert.Equal(t, "error", logging.LevelError.String())
	assert.Equal(t, "unknown", logging.Level(42).String())
}

func TestInit_InvalidConfig(t *testing.T) {
	dir := t.TempDir()

	err := logging.Init(logging.Config{Level: "loud", Path: filepath.Join(dir, "a.log")})
	require.ErrorIs(t, err, logging.ErrInvalidLevel)

	err = logging.Init(logging.Config{
		Level:      "info",
		Path:       filepath.Join(dir, "b.log"),
		Components: map[string]string{"hasher": "shout"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hasher")

	err = logging.Init(logging.Config{Level: "info", Path: filepath.Join(dir, "c.log"), ConsoleLevel: "nope"})
	require.Error(t, err)
}

func TestLogger_WritesToFile(t *testing.T) {
	path := initLogging(t, logging.Config{Level: "info"})

	logger := logging.Get("dedup")
	logger.Info("grouping finished", "groups", 3)
	logger.Debug("hidden detail")

	content := readLog(t, path)
	assert.Contains(t, content, "grouping finished")
	assert.Contains(t, content, "groups=3")
	assert.Contains(t, content, "dedup")
	assert.NotContains(t, content, "hidden detail")
}

func TestLogger_ComponentOverride(t *testing.T) {
	path := initLogging(t, logging.Config{
		Level:      "warn",
		Components: map[string]string{"hasher": "debug"},
	})

	logging.Get("hasher").Debug("hasher debug line")
	logging.Get("scanner").Info("scanner info line")

	content := readLog(t, path)
	assert.Contains(t, content, "hasher debug line")
	assert.NotContains(t, content, "scanner info line")
}

func TestGet_HandleSurvivesInit(t *testing.T) {
	// A handle taken before Init, like a package-level logger, must follow
	// the configuration installed later.
	early := logging.Get("early-component")

	path := initLogging(t, logging.Config{Level: "info"})
	early.Info("written after init")

	assert.Same(t, early, logging.Get("early-component"))
	assert.Contains(t, readLog(t, path), "written after init")
}

func TestLogger_With(t *testing.T) {
	path := initLogging(t, logging.Config{Level: "info"})

	logging.Get("output").With("format", "json").Info("rendered")

	content := readLog(t, path)
	assert.Contains(t, content, "format=json")
	assert.Equal(t, "output", logging.Get("output").Component())
}

func TestWarnings(t *testing.T) {
	initLogging(t, logging.Config{Level: "error"})
	logging.ResetWarnings()

	logger := logging.Get("dedup")
	logger.Info("not counted")
	logger.Warn("counted even when filtered")
	logger.Error("counted")

	assert.Equal(t, int64(2), logging.Warnings())
	logging.ResetWarnings()
	assert.Zero(t, logging.Warnings())
}

func TestConcurrentWrites(t *testing.T) {
	path := initLogging(t, logging.Config{Level: "info"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			logger := logging.Get("hasher")
			for j := 0; j < 50; j++ {
				logger.Info("hashed", "worker", worker, "n", j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Count(readLog(t, path), "hashed")
	assert.Equal(t, 400, lines)
}

func TestClose_Idempotent(t *testing.T) {
	require.NoError(t, logging.Close())
	require.NoError(t, logging.Close())
}

func TestDefaultLogPath(t *testing.T) {
	path := logging.DefaultLogPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("photodedup", "photodedup.log")), path)

	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, path, cfg.Path)
}
