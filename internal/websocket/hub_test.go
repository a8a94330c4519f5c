package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func TestServeWsBroadcastsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	go hub.Run()

	goodID := uuid.New()
	resolve := func(_ context.Context, token string) (model.Actor, error) {
		if token != "good" {
			return model.Actor{}, errors.New("bad token")
		}
		return model.Actor{ID: goodID, Role: model.RoleRepresentative}, nil
	}
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, resolve) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(base+"?token=bad", nil); err == nil {
		t.Fatal("expected handshake to fail for a bad token")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token=good", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Publish(goodID, "sale.confirmed", map[string]string{"number": "VND-1"})

	msg := readMessage(t, conn)
	if msg.Event != "sale.confirmed" || msg.Data["number"] != "VND-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestPublishReachesOwnerAndAdminsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	go hub.Run()

	actors := map[string]model.Actor{
		"rep-a": {ID: uuid.New(), Role: model.RoleRepresentative},
		"rep-b": {ID: uuid.New(), Role: model.RoleRepresentative},
		"admin": {ID: uuid.New(), Role: model.RoleAdmin},
	}
	resolve := func(_ context.Context, token string) (model.Actor, error) {
		a, ok := actors[token]
		if !ok {
			return model.Actor{}, errors.New("bad token")
		}
		return a, nil
	}
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, resolve) })
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="

	conns := map[string]*websocket.Conn{}
	for token := range actors {
		conn, _, err := websocket.DefaultDialer.Dial(base+token, nil)
		if err != nil {
			t.Fatalf("dial %s: %v", token, err)
		}
		defer conn.Close()
		conns[token] = conn
	}
	waitForClients(t, hub, len(actors))

	hub.Publish(actors["rep-b"].ID, "sale.confirmed", map[string]string{"number": "VND-B"})
	hub.Publish(actors["rep-a"].ID, "sale.confirmed", map[string]string{"number": "VND-A"})

	// events arrive in publish order, so rep A's first frame shows whether B's leaked
	if msg := readMessage(t, conns["rep-a"]); msg.Data["number"] != "VND-A" {
		t.Fatalf("rep A received %q, want only its own event", msg.Data["number"])
	}
	if msg := readMessage(t, conns["rep-b"]); msg.Data["number"] != "VND-B" {
		t.Fatalf("rep B received %q, want VND-B", msg.Data["number"])
	}
	for _, want := range []string{"VND-B", "VND-A"} {
		if msg := readMessage(t, conns["admin"]); msg.Data["number"] != want {
			t.Fatalf("admin received %q, want %s", msg.Data["number"], want)
		}
	}
}

type testMessage struct {
	Event string            `json:"event"`
	Data  map[string]string `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) testMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg testMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
