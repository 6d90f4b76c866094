package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/fakeartist/backend/internal/hub"
	"github.com/fakeartist/backend/internal/room"
	"github.com/fakeartist/backend/pkg/types"
)

func readSnapshot(t *testing.T, ctx context.Context, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var msg types.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return msg
}

// The same slug can hold two live sockets, typically a tab refresh where
// the new connection dials before the old one is torn down. Closing the
// old socket must not cut off the new one's snapshots.
func TestHandler_ReconnectKeepsReplication(t *testing.T) {
	h := hub.NewHub(context.Background(), zap.NewNop(), nil)
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.CreateRoom{Code: "WS1RE", Name: "test", Reply: reply}
	rm := <-reply

	pReply := make(chan room.AddPlayerResult, 1)
	rm.Inbox() <- room.AddPlayer{Name: "ann", Reply: pReply}
	res := <-pReply
	if res.Err != nil {
		t.Fatalf("add player: %v", res.Err)
	}

	srv := httptest.NewServer(Handler(h))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=WS1RE&slug=" + res.Player.Slug

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn1, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	_ = readSnapshot(t, ctx, conn1)

	conn2, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer conn2.Close(websocket.StatusNormalClosure, "done")
	joined := readSnapshot(t, ctx, conn2)

	_ = conn1.Close(websocket.StatusNormalClosure, "refresh")

	pReply = make(chan room.AddPlayerResult, 1)
	rm.Inbox() <- room.AddPlayer{Name: "bob", Reply: pReply}
	if res := <-pReply; res.Err != nil {
		t.Fatalf("add second player: %v", res.Err)
	}

	snap := readSnapshot(t, ctx, conn2)
	if snap.Version <= joined.Version || len(snap.Players) != 2 {
		t.Fatalf("surviving socket must keep receiving, got version=%d players=%d",
			snap.Version, len(snap.Players))
	}
}
