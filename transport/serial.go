package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
	"github.com/google/uuid"

	"github.com/arloliu/go-bench/logger"
)

// serialPollTimeout is the timeout for each poll of incoming bytes while a
// read is pending. It trades off between CPU usage and latency, the overall
// response timeout is enforced on top of it.
const serialPollTimeout = 50 * time.Millisecond

// serialHandle is a serial-port transport handle. Serial ports reject a
// second open, so instances are owned and deduplicated by the Registry and
// are never closed before process exit.
type serialHandle struct {
	mu      sync.Mutex
	id      string
	loc     Locator
	port    serial.Port
	timeout time.Duration
	writeT  string
	readT   byte
	closed  bool
	logger  logger.Logger
}

// OpenSerial opens the serial port named by the locator. It is the default
// opener for KindSerial.
func OpenSerial(loc Locator, opts Options) (Handle, error) {
	cfg := &serial.Config{
		Address:  loc.SerialPort(),
		BaudRate: opts.Int("baud_rate", DefaultBaudRate),
		DataBits: opts.Int("data_bits", 8),
		StopBits: opts.Int("stop_bits", 1),
		Parity:   opts.String("parity", "N"),
		Timeout:  serialPollTimeout,
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailure, loc.Raw(), err)
	}

	readT := opts.String("read_termination", "\n")
	if readT == "" {
		readT = "\n"
	}

	id := uuid.NewString()
	h := &serialHandle{
		id:      id,
		loc:     loc,
		port:    port,
		timeout: opts.Duration("timeout", DefaultTimeout),
		writeT:  opts.String("write_termination", "\n"),
		readT:   readT[len(readT)-1],
		logger:  logger.GetLogger().With("locator", loc.Raw(), "handle_id", id),
	}

	return h, nil
}

func (h *serialHandle) ID() string { return h.id }

func (h *serialHandle) Locator() Locator { return h.loc }

func (h *serialHandle) SetTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = d
}

func (h *serialHandle) Timeout() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timeout
}

func (h *serialHandle) Write(cmd string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.write(cmd)
}

func (h *serialHandle) Read() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.read()
}

func (h *serialHandle) Query(cmd string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.write(cmd); err != nil {
		return "", err
	}
	return h.read()
}

func (h *serialHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.port.Close()
}

func (h *serialHandle) write(cmd string) error {
	if h.closed {
		return ErrClosed
	}
	if _, err := h.port.Write([]byte(cmd + h.writeT)); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	h.logger.Debug("write", "cmd", cmd)
	return nil
}

// read accumulates bytes in serialPollTimeout slices until the read
// terminator arrives or the response timeout elapses.
func (h *serialHandle) read() (string, error) {
	if h.closed {
		return "", ErrClosed
	}

	deadline := time.Now().Add(h.timeout)
	var sb strings.Builder
	buf := make([]byte, 128)

	for {
		n, err := h.port.Read(buf)
		for i := 0; i < n; i++ {
			if buf[i] == h.readT {
				resp := strings.TrimRight(sb.String(), "\r")
				h.logger.Debug("read", "response", resp)
				return resp, nil
			}
			sb.WriteByte(buf[i])
		}
		if err != nil && !errors.Is(err, serial.ErrTimeout) {
			return "", fmt.Errorf("%w: %v", ErrIO, err)
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: %s", ErrTimeout, h.loc.Raw())
		}
	}
}
