package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

func newFeedServer(t *testing.T, hub *Hub, identity *auth.Identity) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		if identity != nil {
			auth.SetIdentity(c, identity)
		}
		c.Next()
	}, NewHandler(hub, []string{"/admin/scanner"}, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestInvalidationReachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := newFeedServer(t, hub, &auth.Identity{UserID: uuid.New(), Email: "admin@studio.test"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?path=/admin/scanner"

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount("/admin/scanner") == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifyInvalidated("/courses")
	hub.NotifyInvalidated("/admin/scanner")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeInvalidate, msg.Type)
	assert.Equal(t, "/admin/scanner", msg.Path)
}

func TestHandlerRejectsUnknownPathAndAnonymous(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	srv := newFeedServer(t, hub, &auth.Identity{UserID: uuid.New()})
	resp, err := http.Get(srv.URL + "/ws?path=/profile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	anon := newFeedServer(t, hub, nil)
	resp, err = http.Get(anon.URL + "/ws?path=/admin/scanner")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := &Client{hub: hub, send: make(chan []byte), path: "/admin/scanner"}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{Type: MessageTypeInvalidate, Path: "/admin/scanner"})

	assert.Zero(t, hub.ClientCount("/admin/scanner"))
	_, open := <-client.send
	assert.False(t, open)
}
