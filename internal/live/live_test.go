package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstudio/internal/ledcolor"
	"github.com/coreman2200/ledstudio/internal/scene"
)

func liveServer(t *testing.T, got chan<- Message) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			var m Message
			if err := c.ReadJSON(&m); err != nil {
				return
			}
			got <- m
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSendFrame(t *testing.T) {
	got := make(chan Message, 4)
	srv := liveServer(t, got)

	c := NewClient(wsURL(srv))
	defer c.Close()

	f := scene.BlankFrame()
	f.Set("3", ledcolor.Red)
	require.NoError(t, c.InitRealtime(context.Background()))
	require.NoError(t, c.Send(context.Background(), f))

	select {
	case m := <-got:
		assert.Equal(t, TypeInitRealtime, m.Type)
		assert.Nil(t, m.Frame)
	case <-time.After(2 * time.Second):
		t.Fatal("no init message")
	}
	select {
	case m := <-got:
		assert.Equal(t, TypeSetFrame, m.Type)
		require.NotNil(t, m.Frame)
		assert.Equal(t, ledcolor.Red, m.Frame.State("3"))
	case <-time.After(2 * time.Second):
		t.Fatal("no frame message")
	}
}

func TestDialFailureAndClose(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws/live")
	assert.Error(t, c.Send(context.Background(), scene.BlankFrame()))

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send(context.Background(), scene.BlankFrame()), ErrClosed)
}
