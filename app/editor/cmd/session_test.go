package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/backendtest"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/config"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/controller"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/store"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

type countingAssets struct{ n int }

func (c *countingAssets) RecordAssetFailures(n int) { c.n += n }

func newSession(t *testing.T, opts sessionOptions) (*session, *backendtest.Authority, *bytes.Buffer) {
	t.Helper()
	authority := backendtest.NewAuthority(nil)
	srv := backendtest.NewServer(authority, nil)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Gateway.WS.URL = srv.URL()
	cfg.Gateway.WS.Heartbeat.Enable = false
	cfg.Assets.Dir = t.TempDir()

	transport, err := gateway.NewWSTransport(&cfg.Gateway.WS, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	st := store.New()
	g, err := gateway.New(transport, gateway.WithTracker(st))
	require.NoError(t, err)
	ctrl, err := controller.New(g, st)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &session{
		cfg:        cfg,
		logger:     logger.NewNoop(),
		transport:  transport,
		controller: ctrl,
		store:      st,
		assets:     &countingAssets{},
		opts:       opts,
		out:        out,
	}, authority, out
}

func TestSessionListsFilteredStorage(t *testing.T) {
	s, _, out := newSession(t, sessionOptions{
		save:     "/saves/userdata0000",
		location: "storage",
		category: "consumable",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.run(ctx))

	text := out.String()
	assert.Contains(t, text, "Hunter  1:02:03")
	assert.Contains(t, text, "Blood Vial")
	assert.Contains(t, text, "Antidote")
	assert.Contains(t, text, "300")
	assert.NotContains(t, text, "Blood Stone Shard")
	assert.NotContains(t, text, "Quicksilver Bullets")
}

func TestSessionSearch(t *testing.T) {
	s, _, out := newSession(t, sessionOptions{
		save:    "/saves/userdata0000",
		keyword: "blood",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.run(ctx))

	text := out.String()
	assert.Contains(t, text, "Blood Vial")
	assert.Contains(t, text, "Coldblood Dew")
	assert.NotContains(t, text, "Quicksilver Bullets")
}

func TestSessionPaintsAndSaves(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tiles")
	s, authority, _ := newSession(t, sessionOptions{
		save:     "/saves/userdata0000",
		location: "storage",
		paintDir: dir,
		write:    "/saves/userdata0001",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.run(ctx))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, ".png", filepath.Ext(e.Name()))
	}
	assert.Greater(t, s.assets.(*countingAssets).n, 0)

	saved, ok := authority.Saved("/saves/userdata0001")
	require.True(t, ok)
	assert.Equal(t, "Hunter", saved.Username.String)
}

func TestSessionRejectsUnknownInputs(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, _, _ := newSession(t, sessionOptions{save: "/saves/userdata0000", location: "bank"})
	assert.Error(t, s.run(ctx))

	s, _, _ = newSession(t, sessionOptions{save: "/saves/userdata0000", category: "weapons"})
	assert.Error(t, s.run(ctx))
}

func TestTileFile(t *testing.T) {
	assert.Equal(t, "Consumable_0.png", tileFile("Consumable/0"))
}
