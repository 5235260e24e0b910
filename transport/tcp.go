package transport

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-bench/logger"
)

// tcpHandle is a raw-socket transport handle. Each acquisition opens a fresh
// connection; TCP endpoints support multiple independent sessions safely, so
// no deduplication applies.
type tcpHandle struct {
	mu      sync.Mutex
	id      string
	loc     Locator
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	writeT  string
	readT   byte
	closed  bool
	logger  logger.Logger
}

// OpenTCP opens a raw TCP socket handle to the locator's host and port.
// It is the default opener for KindTCP.
func OpenTCP(loc Locator, opts Options) (Handle, error) {
	addr := net.JoinHostPort(loc.Host(), fmt.Sprintf("%d", loc.TCPPort()))
	conn, err := net.DialTimeout("tcp", addr, opts.Duration("connect_timeout", DefaultConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailure, loc.Raw(), err)
	}

	readT := opts.String("read_termination", "\n")
	if readT == "" {
		readT = "\n"
	}

	id := uuid.NewString()
	h := &tcpHandle{
		id:      id,
		loc:     loc,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: opts.Duration("timeout", DefaultTimeout),
		writeT:  opts.String("write_termination", "\n"),
		readT:   readT[len(readT)-1],
		logger:  logger.GetLogger().With("locator", loc.Raw(), "handle_id", id),
	}

	return h, nil
}

func (h *tcpHandle) ID() string { return h.id }

func (h *tcpHandle) Locator() Locator { return h.loc }

func (h *tcpHandle) SetTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = d
}

func (h *tcpHandle) Timeout() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timeout
}

func (h *tcpHandle) Write(cmd string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.write(cmd)
}

func (h *tcpHandle) Read() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.read()
}

func (h *tcpHandle) Query(cmd string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.write(cmd); err != nil {
		return "", err
	}
	return h.read()
}

func (h *tcpHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.conn.Close()
}

func (h *tcpHandle) write(cmd string) error {
	if h.closed {
		return ErrClosed
	}
	if err := h.conn.SetWriteDeadline(time.Now().Add(h.timeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := h.conn.Write([]byte(cmd + h.writeT)); err != nil {
		return h.classify(err)
	}
	h.logger.Debug("write", "cmd", cmd)
	return nil
}

func (h *tcpHandle) read() (string, error) {
	if h.closed {
		return "", ErrClosed
	}
	if err := h.conn.SetReadDeadline(time.Now().Add(h.timeout)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	line, err := h.reader.ReadString(h.readT)
	if err != nil {
		return "", h.classify(err)
	}
	resp := strings.TrimRight(line, "\r\n")
	h.logger.Debug("read", "response", resp)

	return resp, nil
}

func (h *tcpHandle) classify(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, h.loc.Raw())
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
