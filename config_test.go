package debounce_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/debounce"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, debounce.DefaultConfig().Validate())
	})

	t.Run("non-positive delay", func(t *testing.T) {
		cfg := debounce.Config{Delay: 0}
		require.ErrorIs(t, cfg.Validate(), debounce.ErrInvalidDelay)
	})

	t.Run("negative max wait", func(t *testing.T) {
		cfg := debounce.Config{Delay: time.Second, MaxWait: -time.Second}
		require.ErrorIs(t, cfg.Validate(), debounce.ErrInvalidMaxWait)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	op := func(ctx context.Context, s string) (string, error) { return s, nil }

	t.Run("empty config falls back to defaults", func(t *testing.T) {
		d, err := debounce.NewFromConfig(op, debounce.Config{})
		require.NoError(t, err)
		require.NotNil(t, d)
		defer d.Close()
	})

	t.Run("configured values take effect", func(t *testing.T) {
		d, err := debounce.NewFromConfig(op, debounce.Config{
			Delay:   30 * time.Millisecond,
			MaxWait: time.Second,
		})
		require.NoError(t, err)
		defer d.Close()

		f := d.Call(ctx, "hello")
		v, err := f.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("invalid max wait rejected", func(t *testing.T) {
		_, err := debounce.NewFromConfig(op, debounce.Config{
			Delay:   time.Second,
			MaxWait: -1,
		})
		require.ErrorIs(t, err, debounce.ErrInvalidMaxWait)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DEBOUNCE_DELAY", "125ms")
	t.Setenv("DEBOUNCE_MAX_WAIT", "2s")

	cfg, err := debounce.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 125*time.Millisecond, cfg.Delay)
	assert.Equal(t, 2*time.Second, cfg.MaxWait)
	require.NoError(t, cfg.Validate())
}
