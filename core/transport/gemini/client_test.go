package gemini

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// newTestConn dials a throwaway websocket server and returns the client
// side of the connection.
func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-done
	}))
	t.Cleanup(func() {
		close(done)
		server.Close()
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("expected test dial to succeed, got %v", err)
	}
	return conn
}

func TestCloseReleasesConnectionInstalledAfterEarlierClose(t *testing.T) {
	conn := newTestConn(t)
	c := &LiveClient{}

	// A stop can land while a connection attempt is still in flight; the
	// first close then sees no connection.
	if err := c.Close(); err != nil {
		t.Fatalf("expected close without a connection to succeed, got %v", err)
	}

	// The pending attempt completes and installs its connection.
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if err := c.Close(); err != nil {
		t.Fatalf("expected second close to succeed, got %v", err)
	}

	c.connMu.Lock()
	leftover := c.conn
	c.connMu.Unlock()
	if leftover != nil {
		t.Fatal("expected the late connection to be dropped")
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err == nil {
		t.Fatal("expected the underlying websocket to be closed")
	}
}

func TestCloseAfterReconnectReleasesFreshConnection(t *testing.T) {
	c := &LiveClient{}
	if err := c.Close(); err != nil {
		t.Fatalf("expected initial close to succeed, got %v", err)
	}

	// A later connection attempt supersedes the earlier close.
	c.closed.Store(false)
	conn := newTestConn(t)
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if err := c.Close(); err != nil {
		t.Fatalf("expected close of the fresh connection to succeed, got %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err == nil {
		t.Fatal("expected the fresh websocket to be closed")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn := newTestConn(t)
	c := &LiveClient{conn: conn}

	if err := c.Close(); err != nil {
		t.Fatalf("expected first close to succeed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected repeated close to be a no-op, got %v", err)
	}
}
