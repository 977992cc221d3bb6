package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/telnet"
)

// TelnetClient is a chat client for end-to-end tests against the telnet
// acceptor. Output is matched with ANSI colour codes stripped.
type TelnetClient struct {
	conn    net.Conn
	pending string
	t       *testing.T
}

// NewTelnetClient dials addr.
//
// Precondition: addr must be a "host:port" with a listening server.
// Postcondition: Returns a connected client or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the colour-stripped output and
// returns everything up to and including it. Output after the match is kept
// for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		plain := telnet.StripANSI(string(telnet.FilterIAC([]byte(c.pending))))
		if i := strings.Index(plain, substr); i >= 0 {
			end := i + len(substr)
			c.pending = plain[end:]
			return plain[:end]
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.pending += string(tmp[:n])
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, plain, err)
		}
	}
}

// Send writes text followed by \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Sit answers the name and table prompts.
func (c *TelnetClient) Sit(name, table string, timeout time.Duration) {
	c.t.Helper()
	c.ReadUntil("Your name: ", timeout)
	c.Send(name)
	c.ReadUntil("Table [", timeout)
	c.Send(table)
	c.ReadUntil("Welcome, "+name, timeout)
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
