package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Telnet command and option bytes (RFC 854, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240
	NOP  byte = 241

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

type iacState uint8

const (
	stateData iacState = iota
	stateCommand
	stateOption
	stateSub
	stateSubIAC
)

// iacFilter strips Telnet commands from a byte stream one byte at a time.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports the text byte it yields, if any. An escaped
// IAC IAC yields a literal 0xFF.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stateCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			f.state = stateOption
		case SB:
			f.state = stateSub
		case IAC:
			f.state = stateData
			return IAC, true
		default:
			f.state = stateData
		}
	case stateOption:
		f.state = stateData
	case stateSub:
		if b == IAC {
			f.state = stateSubIAC
		}
	case stateSubIAC:
		if b == SE {
			f.state = stateData
		} else {
			f.state = stateSub
		}
	default:
		if b == IAC {
			f.state = stateCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// FilterIAC removes Telnet command sequences from input. A sequence cut
// off at the end of input is dropped.
func FilterIAC(input []byte) []byte {
	var f iacFilter
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if c, ok := f.feed(b); ok {
			out = append(out, c)
		}
	}
	return out
}

// Conn is one chat client: a TCP connection with Telnet option bytes
// stripped from input and CRLF line endings on output. Writes are
// serialised so table broadcasts and prompts never interleave mid-line.
type Conn struct {
	id     string
	raw    net.Conn
	reader *bufio.Reader
	filter iacFilter

	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. Zero timeouts disable the matching deadline.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           uuid.NewString(),
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ID returns the connection's unique id, used to address table messages.
func (c *Conn) ID() string { return c.id }

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.send([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its line ending. Telnet
// commands and control characters other than tab are dropped.
//
// Postcondition: On error the partial line read so far is returned with it.
// ReadLine must not be called concurrently.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		b, ok := c.filter.feed(raw)
		if !ok {
			continue
		}
		switch {
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b == IAC:
			// 0xFF never occurs in UTF-8 text.
		case b < 32 && b != '\t':
		default:
			line.WriteByte(b)
		}
	}
}

// WriteLine sends text followed by \r\n.
func (c *Conn) WriteLine(text string) error {
	return c.send([]byte(text + "\r\n"))
}

// WriteLines sends multi-line text with every line ending normalised to
// \r\n. Trailing blank lines are dropped.
func (c *Conn) WriteLines(text string) error {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return c.send([]byte(strings.ReplaceAll(text, "\n", "\r\n") + "\r\n"))
}

// WritePrompt sends prompt without a line ending.
func (c *Conn) WritePrompt(prompt string) error {
	return c.send([]byte(prompt))
}

// Write sends raw bytes.
func (c *Conn) Write(data []byte) error {
	return c.send(data)
}

func (c *Conn) send(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close closes the underlying connection, unblocking any ReadLine.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
