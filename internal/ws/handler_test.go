package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/hub"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
	"github.com/DoyleJ11/quiz-show-backend/internal/types"
)

func setup(t *testing.T) (*httptest.Server, string) {
	srv, url, _ := setupHub(t)
	return srv, url
}

func setupHub(t *testing.T) (*httptest.Server, string, *hub.Hub) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, session.Options{Log: log})

	state := engine.NewState(nil)
	state.Players = []engine.Player{engine.NewPlayer("p1", "Ala")}
	reply := make(chan *session.Session, 1)
	h.Inbox() <- hub.CreateSession{Code: "ROOM01", State: state, Reply: reply}
	require.NotNil(t, <-reply)

	srv := httptest.NewServer(Handler(h, log))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-h.Done()
	})
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "?code=ROOM01", h
}

func read(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(raw)))
}

func TestHandler_SnapshotThenActions(t *testing.T) {
	_, url := setup(t)
	ctx := context.Background()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := read(t, conn)
	require.Equal(t, types.TypeSnapshot, first.Type)
	assert.Equal(t, 0, first.Version)
	require.Len(t, first.State.Players, 1)

	send(t, conn, `{"type":"START_ROUND","round":"knowledge"}`)
	started := read(t, conn)
	assert.Equal(t, 1, started.Version)
	assert.True(t, started.State.RoundStarted)
	assert.True(t, engine.ContainsEvent(started.Events, engine.EvtRoundStarted))

	send(t, conn, `{"type":"USE_CARD","player_id":"p1","card":"skip"}`)
	rejected := read(t, conn)
	assert.Equal(t, types.TypeError, rejected.Type)
	assert.Contains(t, rejected.Error, engine.ErrCardNotAvailable.Error())

	send(t, conn, `not json`)
	assert.Equal(t, "bad json", read(t, conn).Error)

	send(t, conn, `{"type":"UNDO"}`)
	undone := read(t, conn)
	assert.Equal(t, 2, undone.Version)
	assert.False(t, undone.State.RoundStarted)
}

func TestHandler_UnknownSession(t *testing.T) {
	srv, _ := setup(t)

	_, resp, err := websocket.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"?code=NOPE", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandler_TimerControl(t *testing.T) {
	_, url := setup(t)
	ctx := context.Background()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")
	_ = read(t, conn)

	send(t, conn, `{"type":"START_ROUND","round":"speed"}`)
	_ = read(t, conn)
	send(t, conn, `{"type":"SET_ACTIVE_PLAYER","player_id":"p1"}`)
	_ = read(t, conn)

	send(t, conn, `{"type":"START_TIMER","timer_ms":-1}`)
	rejected := read(t, conn)
	assert.Equal(t, types.TypeError, rejected.Type)
	assert.Contains(t, rejected.Error, types.ErrBadTimer.Error())

	// Zero stops rather than arming an instant expiry.
	send(t, conn, `{"type":"start_timer"}`)
	send(t, conn, `{"type":"ADJUST_POINTS","player_id":"p1","delta":5}`)
	adjusted := read(t, conn)
	assert.Equal(t, 3, adjusted.Version)
	assert.Equal(t, 5, adjusted.State.Players[0].Points)
	assert.Equal(t, engine.MaxLives, adjusted.State.Players[0].Lives)
}

func TestHandler_ClosesWhenSessionRemoved(t *testing.T) {
	_, url, h := setupHub(t)
	ctx := context.Background()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")
	_ = read(t, conn)

	h.Inbox() <- hub.RemoveSession{Code: "ROOM01"}

	readCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, _, err = conn.Read(readCtx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}

func TestServerMessage_Warning(t *testing.T) {
	msg := serverMessage(session.Update{Version: 4, Warning: "disk full"})
	assert.Equal(t, types.TypeWarning, msg.Type)
	assert.Equal(t, "disk full", msg.Error)
	assert.Nil(t, msg.State)

	msg = serverMessage(session.Update{Version: 4, State: engine.NewState(nil)})
	assert.Equal(t, types.TypeSnapshot, msg.Type)
	assert.Equal(t, 4, msg.Version)
}
