package config

import (
	"testing"
	"time"

	"campusdash/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func newTestLoader(t *testing.T, args []string, env map[string]string) *Loader {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	l := NewLoader(flags)
	l.lookupEnv = fakeEnv(env)
	return l
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	cfg, err := newTestLoader(t, nil, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	require.Len(t, cfg.Panels, 1)
	assert.Equal(t, DefaultPanelKey, cfg.Panels[0].Key)
}

func TestLoader_Load_Valid(t *testing.T) {
	cfg, err := newTestLoader(t, []string{"--config", "testdata/valid.yaml"}, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownWait)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)

	require.Len(t, cfg.Panels, 2)
	daily := cfg.Panels[0]
	assert.Equal(t, 30*time.Second, daily.Interval)
	assert.Equal(t, 5*time.Second, daily.Timeout)
	u, err := cfg.PanelURL(daily)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api/on-campus/daily-total-active-students", u)

	fixture := cfg.Panels[1]
	assert.Equal(t, models.ValuesFromFixture, fixture.ValueSource)
	assert.Equal(t, DefaultInterval, fixture.Interval)
	u, err = cfg.PanelURL(fixture)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/totals", u)
}

func TestLoader_Load_Minimal(t *testing.T) {
	cfg, err := newTestLoader(t, []string{"--config", "testdata/minimal.yaml"}, nil).Load()
	require.NoError(t, err)

	require.Len(t, cfg.Panels, 1)
	assert.Equal(t, "campus", cfg.Panels[0].Key)
	assert.Equal(t, DefaultTimeout, cfg.Panels[0].Timeout)
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := newTestLoader(t, []string{"--config", "testdata/nope.yaml"}, nil).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("broken yaml", func(t *testing.T) {
		_, err := newTestLoader(t, []string{"--config", "testdata/broken.yaml"}, nil).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("timeout exceeds interval", func(t *testing.T) {
		_, err := newTestLoader(t, []string{"--config", "testdata/timeout_exceeds_interval.yaml"}, nil).Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad shutdown wait", func(t *testing.T) {
		_, err := newTestLoader(t, nil, map[string]string{"SHUTDOWN_WAIT": "soon"}).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SHUTDOWN_WAIT")
	})
}

func TestLoader_Precedence(t *testing.T) {
	args := []string{"--config", "testdata/valid.yaml", "--env-file", "testdata/test.env"}

	t.Run("dotenv beats file", func(t *testing.T) {
		cfg, err := newTestLoader(t, args, nil).Load()
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.ListenAddr)
		assert.Equal(t, "http://dotenv.local", cfg.APIBaseURL)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("environment beats dotenv", func(t *testing.T) {
		cfg, err := newTestLoader(t, args, map[string]string{"LISTEN_ADDR": ":6060", "TIMEZONE": "UTC"}).Load()
		require.NoError(t, err)
		assert.Equal(t, ":6060", cfg.ListenAddr)
		assert.Equal(t, "UTC", cfg.Timezone)
	})

	t.Run("flags beat environment", func(t *testing.T) {
		withFlags := append(append([]string{}, args...), "--addr", ":5050", "--log-level", "error")
		cfg, err := newTestLoader(t, withFlags, map[string]string{"LISTEN_ADDR": ":6060", "LOG_LEVEL": "warn"}).Load()
		require.NoError(t, err)
		assert.Equal(t, ":5050", cfg.ListenAddr)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("unset flags do not override", func(t *testing.T) {
		cfg, err := newTestLoader(t, args, map[string]string{"LOG_LEVEL": "warn"}).Load()
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})
}
