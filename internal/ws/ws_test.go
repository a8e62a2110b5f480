package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/duel"
	"github.com/DoyleJ11/duel-backend/internal/hub"
	"github.com/DoyleJ11/duel-backend/internal/notify"
	"github.com/DoyleJ11/duel-backend/pkg/types"
)

type staticScrambler struct{}

func (staticScrambler) Generate(int, *int) (string, error) { return "R U F", nil }

func TestRegistry_SendToUnknownConnIsNoOp(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	assert.False(t, reg.Send("ghost", types.ServerMessage{Type: "DuelStarted"}))
	reg.SendTo("ghost", notify.DuelStarted{})
}

func TestRegistry_FullOutboxDropsInsteadOfBlocking(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	out := reg.Register("c1", 1)

	reg.SendTo("c1", notify.DuelCreated{DuelCode: "aaaaaa"})
	done := make(chan struct{})
	go func() {
		reg.SendToMany([]duel.ConnectionID{"c1", "c1"}, notify.DuelStarted{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full outbox")
	}

	first := <-out
	assert.Equal(t, "DuelCreated", first.Type)
	assert.Equal(t, "aaaaaa", first.DuelCode)
	select {
	case extra := <-out:
		t.Fatalf("expected dropped frames, got %+v", extra)
	default:
	}
}

func TestRegistry_UnregisterClosesOutbox(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	out := reg.Register("c1", 4)
	require.Equal(t, 1, reg.Len())

	reg.Unregister("c1")
	reg.Unregister("c1")
	_, ok := <-out
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
	reg.SendTo("c1", notify.DuelStarted{})
}

func TestEncode(t *testing.T) {
	ready := Encode(notify.DuelReady{DuelCode: "k3f9zq", Scramble: "R U", CubeSize: 3, InspectionTime: 0})
	assert.Equal(t, "DuelReady", ready.Type)
	require.NotNil(t, ready.InspectionTime)
	assert.Equal(t, 0, *ready.InspectionTime)

	ended := Encode(notify.DuelEnded{IsWinner: false, OpponentSolveTimeMillis: 11800})
	require.NotNil(t, ended.IsWinner)
	assert.False(t, *ended.IsWinner)
	assert.Equal(t, int64(11800), *ended.OpponentSolveTimeMillis)

	assert.Equal(t, types.ServerMessage{Type: "DuelCancelled"}, Encode(notify.DuelCancelled{}))
}

// --- end to end over a real websocket ---

func startServer(t *testing.T) string {
	t.Helper()
	log := zap.NewNop()
	reg := NewRegistry(log)
	h := hub.NewHub(reg, log,
		hub.WithScrambler(staticScrambler{}),
		hub.WithCodeGenerator(func() (string, error) { return "k3f9zq", nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(Handler(h, reg, Options{}, log))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, c, msg))
}

func recvFrame(t *testing.T, c *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var msg types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, c, &msg))
	return msg
}

func TestHandler_DuelOverWebsocket(t *testing.T) {
	url := startServer(t)
	host := dial(t, url)
	challenger := dial(t, url)

	send(t, host, types.ClientMessage{Type: types.CmdCreateDuel, CubeSize: 3, InspectionTime: 15})
	created := recvFrame(t, host)
	require.Equal(t, "DuelCreated", created.Type)
	require.Equal(t, "k3f9zq", created.DuelCode)

	send(t, challenger, types.ClientMessage{Type: types.CmdJoinDuel, ID: "j1", DuelCode: "k3f9zq"})
	ready := recvFrame(t, challenger)
	assert.Equal(t, "DuelReady", ready.Type)
	assert.Equal(t, "R U F", ready.Scramble)
	result := recvFrame(t, challenger)
	assert.Equal(t, types.MsgResult, result.Type)
	assert.Equal(t, "j1", result.ID)
	require.NotNil(t, result.OK)
	assert.True(t, *result.OK)
	assert.Equal(t, "DuelReady", recvFrame(t, host).Type)

	send(t, host, types.ClientMessage{Type: types.CmdReadyForDuel, DuelCode: "k3f9zq"})
	send(t, challenger, types.ClientMessage{Type: types.CmdReadyForDuel, DuelCode: "k3f9zq"})
	assert.Equal(t, "DuelStarted", recvFrame(t, host).Type)
	assert.Equal(t, "DuelStarted", recvFrame(t, challenger).Type)

	send(t, host, types.ClientMessage{Type: types.CmdFinishSolve, DuelCode: "k3f9zq", SolveTimeMillis: 9000})
	send(t, challenger, types.ClientMessage{Type: types.CmdFinishSolve, DuelCode: "k3f9zq", SolveTimeMillis: 9500})

	hostEnd := recvFrame(t, host)
	assert.Equal(t, "DuelEnded", hostEnd.Type)
	assert.True(t, *hostEnd.IsWinner)
	assert.Equal(t, int64(9500), *hostEnd.OpponentSolveTimeMillis)

	challengerEnd := recvFrame(t, challenger)
	assert.False(t, *challengerEnd.IsWinner)
	assert.Equal(t, int64(9000), *challengerEnd.OpponentSolveTimeMillis)
}

func TestHandler_JoinUnknownDuel(t *testing.T) {
	url := startServer(t)
	c := dial(t, url)

	send(t, c, types.ClientMessage{Type: types.CmdJoinDuel, ID: "j1", DuelCode: "zzzzzz"})
	assert.Equal(t, "DuelCancelled", recvFrame(t, c).Type)
	result := recvFrame(t, c)
	require.NotNil(t, result.OK)
	assert.False(t, *result.OK)
}

func TestHandler_BadFramesGetErrors(t *testing.T) {
	url := startServer(t)
	c := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{not json")))
	assert.Equal(t, types.ServerMessage{Type: types.MsgError, Error: "bad json"}, recvFrame(t, c))

	send(t, c, types.ClientMessage{Type: "Teleport", ID: "x"})
	unknown := recvFrame(t, c)
	assert.Equal(t, types.MsgError, unknown.Type)
	assert.Equal(t, "x", unknown.ID)

	send(t, c, types.ClientMessage{Type: types.CmdCreateDuel, ID: "c1", CubeSize: 1})
	invalid := recvFrame(t, c)
	assert.Equal(t, types.MsgError, invalid.Type)
	assert.Contains(t, invalid.Error, "cube size")
}

func TestHandler_HostDisconnectCancelsDuel(t *testing.T) {
	url := startServer(t)
	host := dial(t, url)
	challenger := dial(t, url)

	send(t, host, types.ClientMessage{Type: types.CmdCreateDuel, CubeSize: 3, InspectionTime: 15})
	require.Equal(t, "DuelCreated", recvFrame(t, host).Type)
	send(t, challenger, types.ClientMessage{Type: types.CmdJoinDuel, DuelCode: "k3f9zq"})
	require.Equal(t, "DuelReady", recvFrame(t, challenger).Type)
	require.Equal(t, types.MsgResult, recvFrame(t, challenger).Type)

	require.NoError(t, host.Close(websocket.StatusNormalClosure, "leaving"))
	assert.Equal(t, "DuelCancelled", recvFrame(t, challenger).Type)
}
