package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/backendtest"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/pkg/serializer"
	pkgws "github.com/lk2023060901/xdooria-editor/pkg/websocket"
)

type recordingTracker struct {
	mu      sync.Mutex
	begun   []uint64
	aborted []uint64
}

func (t *recordingTracker) Begin(seq uint64, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.begun = append(t.begun, seq)
}

func (t *recordingTracker) Abort(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aborted = append(t.aborted, seq)
}

type recordingRecorder struct {
	mu       sync.Mutex
	commands []string
	failures int
}

func (r *recordingRecorder) RecordCommand(command string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	if !success {
		r.failures++
	}
}

func newGateway(t *testing.T, transport gateway.Transport, opts ...gateway.Option) *gateway.Gateway {
	t.Helper()
	g, err := gateway.New(transport, opts...)
	require.NoError(t, err)
	return g
}

func TestNewRequiresTransport(t *testing.T) {
	_, err := gateway.New(nil)
	assert.Error(t, err)
}

func TestInvokeSequencesAndNormalizes(t *testing.T) {
	authority := backendtest.NewAuthority(nil)
	tracker := &recordingTracker{}
	recorder := &recordingRecorder{}
	g := newGateway(t, authority, gateway.WithTracker(tracker), gateway.WithRecorder(recorder))
	ctx := context.Background()

	open, err := g.Invoke(ctx, gateway.MakeSave{Path: "/saves/userdata0000"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), open.Seq)

	reply, err := g.Invoke(ctx, gateway.EditQuantity{ID: 1001, ArticleType: model.ArticleConsumable, Index: 1, Value: 9})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), reply.Seq)

	art, ok := reply.Snapshot.Article(model.LocationInventory, model.ArticleConsumable, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(9), art.Amount)
	assert.Equal(t, 1, art.Index)
	assert.Equal(t, model.FamilyItem, art.TypeFamily)

	assert.Equal(t, []uint64{1, 2}, tracker.begun)
	assert.Empty(t, tracker.aborted)
	assert.Equal(t, []string{gateway.CmdMakeSave, gateway.CmdEditQuantity}, recorder.commands)
}

func TestInvokeRejected(t *testing.T) {
	authority := backendtest.NewAuthority(nil)
	authority.Open()
	authority.Fail(gateway.CmdSetUsername, "save is read-only")

	tracker := &recordingTracker{}
	recorder := &recordingRecorder{}
	g := newGateway(t, authority, gateway.WithTracker(tracker), gateway.WithRecorder(recorder))

	reply, err := g.Invoke(context.Background(), gateway.SetUsername{NewUsername: "Eileen"})
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.True(t, errors.Is(err, gateway.ErrCommand))

	var cmdErr *gateway.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, gateway.CmdSetUsername, cmdErr.Command)
	assert.Equal(t, uint64(1), cmdErr.Seq)

	re, ok := gateway.IsRemote(err)
	require.True(t, ok)
	assert.Equal(t, "save is read-only", re.Message)

	assert.Equal(t, []uint64{1}, tracker.aborted)
	assert.Equal(t, 1, recorder.failures)
	assert.Equal(t, "Hunter", authority.Snapshot().Username.String)
}

func TestEditQuantityRejectsStaleArticleID(t *testing.T) {
	authority := backendtest.NewAuthority(nil)
	authority.Open()
	g := newGateway(t, authority)

	// 下标 1 处是 1001，1000 在下标 0
	_, err := g.Invoke(context.Background(), gateway.EditQuantity{ID: 1000, ArticleType: model.ArticleConsumable, Index: 1, Value: 9})
	require.Error(t, err)
	re, ok := gateway.IsRemote(err)
	require.True(t, ok)
	assert.Equal(t, backendtest.CodeMismatch, re.Code)

	art, ok := authority.Snapshot().Article(model.LocationInventory, model.ArticleConsumable, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(5), art.Amount)
}

func TestQueryIsUntracked(t *testing.T) {
	authority := backendtest.NewAuthority(nil)
	authority.Open()
	tracker := &recordingTracker{}
	g := newGateway(t, authority, gateway.WithTracker(tracker))

	var isz gateway.Isz
	require.NoError(t, g.Query(context.Background(), gateway.GetIsz{}, &isz))
	assert.Equal(t, "FF FF 1A 3", isz.String())

	var weapons gateway.WeaponTable
	require.NoError(t, g.Query(context.Background(), gateway.ReturnWeapons{}, &weapons))
	assert.Equal(t, "Saw Cleaver", weapons["rightHand"]["2000"].ItemName)

	assert.Empty(t, tracker.begun)
}

type blockingTransport struct{}

func (blockingTransport) Call(ctx context.Context, _ uint64, _ string, _ any, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCallTimeout(t *testing.T) {
	tracker := &recordingTracker{}
	g := newGateway(t, blockingTransport{}, gateway.WithCallTimeout(50*time.Millisecond), gateway.WithTracker(tracker))

	_, err := g.Invoke(context.Background(), gateway.SetUsername{NewUsername: "Djura"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, errors.Is(err, gateway.ErrCommand))
	assert.Len(t, tracker.aborted, 1)
}

func TestNewRequestCoversCommands(t *testing.T) {
	assert.Len(t, gateway.Commands(), 25)
	for _, name := range gateway.Commands() {
		req, ok := gateway.NewRequest(name)
		require.True(t, ok, name)
		assert.Equal(t, name, req.Command())
	}
	_, ok := gateway.NewRequest("format_disk")
	assert.False(t, ok)
}

func TestTeleportParamsEncodeMapPair(t *testing.T) {
	for _, codec := range []serializer.Serializer{serializer.NewJSON(), serializer.NewMsgpack()} {
		t.Run(codec.ContentType(), func(t *testing.T) {
			data, err := codec.Serialize(gateway.Teleport{X: 1, Y: 2, Z: 3, MapID: model.MapID{24, 1}})
			require.NoError(t, err)
			var back gateway.Teleport
			require.NoError(t, codec.Deserialize(data, &back))
			assert.Equal(t, model.MapID{24, 1}, back.MapID)
		})
	}

	data, err := serializer.NewJSON().Serialize(gateway.Teleport{MapID: model.MapID{24, 1}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mapId":[24,1]`)
}

func TestCommandErrorIs(t *testing.T) {
	err := &gateway.CommandError{Command: gateway.CmdSave, Seq: 4, Err: gateway.ErrDisconnected}
	assert.True(t, errors.Is(err, gateway.ErrCommand))
	assert.True(t, errors.Is(err, gateway.ErrDisconnected))
	assert.Contains(t, err.Error(), "save (seq 4)")
}

// ===== WebSocket transport =====

func dialTransport(t *testing.T, url string, codec serializer.Serializer) *gateway.WSTransport {
	t.Helper()
	transport, err := gateway.NewWSTransport(&pkgws.ClientConfig{URL: url}, codec, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, transport.Connect(ctx))
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func TestWSTransportRoundTrip(t *testing.T) {
	for _, codec := range []serializer.Serializer{serializer.NewJSON(), serializer.NewMsgpack()} {
		t.Run(codec.ContentType(), func(t *testing.T) {
			authority := backendtest.NewAuthority(nil)
			srv := backendtest.NewServer(authority, codec)
			defer srv.Close()

			g := newGateway(t, dialTransport(t, srv.URL(), codec))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := g.Invoke(ctx, gateway.MakeSave{Path: "/saves/userdata0000"})
			require.NoError(t, err)

			reply, err := g.Invoke(ctx, gateway.SetPlaytime{NewPlaytime: model.EncodePlaytime(60_000)})
			require.NoError(t, err)
			assert.Equal(t, uint32(60_000), reply.Snapshot.Playtime)

			reply, err = g.Invoke(ctx, gateway.Teleport{X: 10, Y: -4.5, Z: 2, MapID: model.MapID{24, 1}})
			require.NoError(t, err)
			require.NotNil(t, reply.Snapshot.Position)
			assert.Equal(t, model.MapID{24, 1}, reply.Snapshot.Position.LoadedMap)
			assert.Equal(t, model.Value("-4.5"), reply.Snapshot.Position.Coordinates.Y)

			var message string
			require.NoError(t, g.Query(ctx, gateway.FixIsz{}, &message))
			assert.Equal(t, "Isz glitch fixed", message)

			_, err = g.Invoke(ctx, gateway.SetUsername{NewUsername: strings.Repeat("x", 17)})
			re, ok := gateway.IsRemote(err)
			require.True(t, ok)
			assert.Equal(t, backendtest.CodeInvalid, re.Code)
		})
	}
}

// newSilentServer 读取请求但从不回复；onRead 在每次读到请求后调用
func newSilentServer(t *testing.T, onRead func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			if onRead != nil {
				onRead(conn)
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSTransportContextDeadline(t *testing.T) {
	transport := dialTransport(t, newSilentServer(t, nil), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := transport.Call(ctx, 1, gateway.CmdGetIsz, gateway.GetIsz{}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWSTransportDisconnectFailsPending(t *testing.T) {
	url := newSilentServer(t, func(conn *websocket.Conn) { _ = conn.Close() })
	transport := dialTransport(t, url, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := transport.Call(ctx, 1, gateway.CmdGetIsz, gateway.GetIsz{}, nil)
	assert.ErrorIs(t, err, gateway.ErrDisconnected)
	assert.True(t, errors.Is(err, gateway.ErrDisconnected))
	assert.Contains(t, err.Error(), "connection lost")
}

func TestWSTransportClose(t *testing.T) {
	transport := dialTransport(t, newSilentServer(t, nil), nil)
	require.NoError(t, transport.Close())

	err := transport.Call(context.Background(), 1, gateway.CmdGetIsz, gateway.GetIsz{}, nil)
	assert.ErrorIs(t, err, gateway.ErrClosed)
}
