package telnet

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DmitriyMamontov/all-dice-bot/internal/config"
)

// echoHandler echoes lines back until the client types "quit".
type echoHandler struct {
	sessionCount atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessionCount.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteLine("bye")
			return nil
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

func startAcceptor(t *testing.T, handler SessionHandler) (*Acceptor, chan error) {
	t.Helper()
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := NewAcceptor(cfg, handler, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" },
		2*time.Second, 10*time.Millisecond)
	return acc, errCh
}

// dial connects and consumes the server's option negotiation.
func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)
	neg := make([]byte, 3)
	_, err = r.Read(neg)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, neg)
	return conn, r
}

func TestAcceptorStartAndStop(t *testing.T) {
	handler := &echoHandler{}
	acc, errCh := startAcceptor(t, handler)

	conn, r := dial(t, acc.Addr())
	_, err := conn.Write([]byte("roll\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "echo: roll", strings.TrimRight(line, "\r\n"))

	_, _ = conn.Write([]byte("quit\r\n"))
	line, _ = r.ReadString('\n')
	assert.Equal(t, "bye", strings.TrimRight(line, "\r\n"))
	conn.Close()

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.Equal(t, int32(1), handler.sessionCount.Load())
	assert.False(t, acc.IsRunning())
}

func TestAcceptorCountsActiveClients(t *testing.T) {
	handler := &echoHandler{}
	acc, _ := startAcceptor(t, handler)
	defer acc.Stop()

	const numClients = 3
	conns := make([]net.Conn, numClients)
	readers := make([]*bufio.Reader, numClients)
	for i := range conns {
		conns[i], readers[i] = dial(t, acc.Addr())
	}
	require.Eventually(t, func() bool { return acc.Active() == numClients },
		2*time.Second, 10*time.Millisecond)

	for i, conn := range conns {
		_, _ = conn.Write([]byte("quit\r\n"))
		_, _ = readers[i].ReadString('\n')
		conn.Close()
	}
	require.Eventually(t, func() bool { return acc.Active() == 0 },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(numClients), handler.sessionCount.Load())
}

func TestAcceptorStopDisconnectsIdleClients(t *testing.T) {
	acc, errCh := startAcceptor(t, &echoHandler{})
	conn, r := dial(t, acc.Addr())
	defer conn.Close()
	require.Eventually(t, func() bool { return acc.Active() == 1 },
		2*time.Second, 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop waited for an idle client")
	}
	require.NoError(t, <-errCh)

	_, err := r.ReadString('\n')
	assert.Error(t, err, "the server side is closed")
}
