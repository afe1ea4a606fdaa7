package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	for _, name := range []string{"serve", "migrate", "seed", "generate"} {
		assert.Contains(t, buf.String(), name)
	}
}

func TestRootCommandRejectsUnknownFlags(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--unknown-flag", "value"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestServeRequiresConfiguration(t *testing.T) {
	cfg = config.Load(map[string]string{})
	err := runServe(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	setupLogging("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	setupLogging("nonsense", "console")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestNewRevoker(t *testing.T) {
	ctx := context.Background()

	t.Run("memory without redis", func(t *testing.T) {
		cfg = config.Config{}
		revoker, closeRevoker, err := newRevoker(ctx)
		require.NoError(t, err)
		defer closeRevoker()
		assert.IsType(t, &auth.MemoryRevoker{}, revoker)
	})

	t.Run("redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg = config.Config{RedisURL: "redis://" + mr.Addr()}
		revoker, closeRevoker, err := newRevoker(ctx)
		require.NoError(t, err)
		defer closeRevoker()
		require.IsType(t, &auth.RedisRevoker{}, revoker)

		require.NoError(t, revoker.Revoke(ctx, "session-1", time.Minute))
		revoked, err := revoker.IsRevoked(ctx, "session-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("unreachable redis fails", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg = config.Config{RedisURL: "redis://" + addr}
		_, _, err := newRevoker(ctx)
		assert.Error(t, err)
	})
}
