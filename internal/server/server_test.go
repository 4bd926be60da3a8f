// internal/server/server_test.go
package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riad-Zz/chipichipi/internal/directory"
	"github.com/Riad-Zz/chipichipi/internal/session"
	"github.com/Riad-Zz/chipichipi/internal/store"
)

func newTestServer(t *testing.T) (*Server, *directory.Directory, *session.Registry) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	st := store.New(t.TempDir())
	dir := directory.New(nil, st, logger)
	registry := session.NewRegistry(logger)
	return New(dir, st, registry, logger), dir, registry
}

func TestTCPEndToEnd(t *testing.T) {
	srv, dir, registry := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go srv.Serve(l)

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	script := strings.Join([]string{
		"1", "alice", "pw1", "30", "F", "US",
		"2", "alice", "pw1",
		"8",
		"3",
	}, "\n") + "\n"
	_, err = conn.Write([]byte(script))
	require.NoError(t, err)

	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "Welcome to ChipiChipi!")
	assert.Contains(t, out, "Registration successful!")
	assert.Contains(t, out, "Login successful. Welcome, alice!")
	assert.Contains(t, out, "Goodbye!")
	assert.True(t, dir.Exists("alice"))
	assert.False(t, registry.IsOnline("alice"))
}

func TestTCPAbruptDisconnectCleansRegistry(t *testing.T) {
	srv, dir, registry := newTestServer(t)
	_, err := dir.Register("alice", "pw1", 30, "F", "US")
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go srv.Serve(l)

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("2\nalice\npw1\n"))
	require.NoError(t, err)

	// Wait for the login to land, then drop the connection mid-menu.
	require.Eventually(t, func() bool { return registry.IsOnline("alice") },
		2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return !registry.IsOnline("alice") },
		2*time.Second, 10*time.Millisecond, "disconnect must remove the registry entry")
}

func TestWebSocketEndToEnd(t *testing.T) {
	srv, dir, _ := newTestServer(t)
	_, err := dir.Register("alice", "pw1", 30, "F", "US")
	require.NoError(t, err)

	hs := httptest.NewServer(srv.Handler())
	defer hs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.CloseNow()

	nc := websocket.NetConn(ctx, c, websocket.MessageText)
	script := "2\nalice\npw1\n8\n3\n"
	_, err = nc.Write([]byte(script))
	require.NoError(t, err)

	var out strings.Builder
	scanner := bufio.NewScanner(nc)
	for scanner.Scan() {
		out.WriteString(scanner.Text())
		out.WriteString("\n")
	}

	assert.Contains(t, out.String(), "Welcome to ChipiChipi!")
	assert.Contains(t, out.String(), "Login successful. Welcome, alice!")
	assert.Contains(t, out.String(), "Goodbye!")
}
