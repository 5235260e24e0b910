package transport

import (
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-bench/logger"
)

// OpenFunc opens a fresh transport handle for a locator.
type OpenFunc func(loc Locator, opts Options) (Handle, error)

// Registry is the process-wide store of open transport sessions.
//
// Serial-style endpoints reject a second open at the driver layer, so the
// registry keeps an append-only table keyed by the locator short form and
// returns the already-open handle for any later acquisition of the same
// endpoint. Entries live for the process lifetime; there is no teardown path.
//
// Non-serial endpoints support multiple independent sessions, so every
// acquisition opens a fresh handle.
//
// The registry is an explicit instance rather than a package singleton so
// each test can construct its own.
type Registry struct {
	logger logger.Logger

	// serialMu guards the check-then-insert sequence on serial; lookups on
	// the fast path are lock-free. The insert for a key that already exists
	// must always return the existing handle, never open a second one.
	serialMu sync.Mutex
	serial   *xsync.MapOf[string, Handle]

	ctrlMu      sync.Mutex
	controllers map[string]*PrologixController
	gpibBoards  map[string]string
	gpibOpts    map[string]Options

	openers map[Kind]OpenFunc
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registry events.
func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithOpener replaces the opener for one transport kind. This is how USB
// endpoints gain support, and how tests substitute fake transports.
func WithOpener(kind Kind, open OpenFunc) RegistryOption {
	return func(r *Registry) { r.openers[kind] = open }
}

// WithGPIBController maps a GPIB board name (e.g. "GPIB0") to the locator of
// its Prologix/AR488-class adapter, normally a serial or TCP endpoint. The
// optional opts configure the adapter's transport handle.
func WithGPIBController(board string, controllerLocator string, opts ...Options) RegistryOption {
	return func(r *Registry) {
		r.gpibBoards[board] = controllerLocator
		if len(opts) > 0 {
			r.gpibOpts[board] = opts[0]
		}
	}
}

// NewRegistry creates a transport session registry with the built-in serial
// and TCP openers.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:      logger.GetLogger(),
		serial:      xsync.NewMapOf[string, Handle](),
		controllers: make(map[string]*PrologixController),
		gpibBoards:  make(map[string]string),
		gpibOpts:    make(map[string]Options),
		openers: map[Kind]OpenFunc{
			KindSerial: OpenSerial,
			KindTCP:    OpenTCP,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Acquire returns a transport handle for the locator, opening the endpoint
// if needed. Serial locators are deduplicated by short form; GPIB locators
// resolve to a device handle on the board's shared controller; everything
// else opens fresh.
//
// Opening failures are reported wrapping ErrConnectionFailure and are not
// retried at this layer.
func (r *Registry) Acquire(loc Locator, opts Options) (Handle, error) {
	switch loc.Kind() {
	case KindSerial:
		return r.acquireSerial(loc, opts)
	case KindGPIB:
		ctrl, err := r.Controller(loc.Board())
		if err != nil {
			return nil, err
		}
		return ctrl.Device(loc), nil
	default:
		open, ok := r.openers[loc.Kind()]
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNoOpener, loc.Kind(), loc.Raw())
		}
		h, err := open(loc, opts)
		if err != nil {
			return nil, err
		}
		r.logger.Info("opened transport", "locator", loc.Raw(), "kind", loc.Kind().String(), "handle_id", HandleID(h))

		return h, nil
	}
}

// AcquireString parses the locator string and acquires a handle for it.
func (r *Registry) AcquireString(locator string, opts Options) (Handle, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	return r.Acquire(loc, opts)
}

func (r *Registry) acquireSerial(loc Locator, opts Options) (Handle, error) {
	key := loc.ShortForm()
	if h, ok := r.serial.Load(key); ok {
		r.logger.Info("matched existing serial session", "locator", loc.Raw(), "key", key, "handle_id", HandleID(h))
		return h, nil
	}

	r.serialMu.Lock()
	defer r.serialMu.Unlock()

	// re-check under the lock; a concurrent caller may have inserted
	if h, ok := r.serial.Load(key); ok {
		r.logger.Info("matched existing serial session", "locator", loc.Raw(), "key", key, "handle_id", HandleID(h))
		return h, nil
	}

	open := r.openers[KindSerial]
	h, err := open(loc, opts)
	if err != nil {
		return nil, err
	}
	r.serial.Store(key, h)
	r.logger.Info("opened serial transport", "locator", loc.Raw(), "key", key, "handle_id", HandleID(h))

	return h, nil
}

// Controller returns the shared Prologix controller for a GPIB board,
// creating it on first use. The adapter's own transport handle is acquired
// through the registry, so two boards configured on the same serial port
// would share a handle per the dedup invariant.
func (r *Registry) Controller(board string) (*PrologixController, error) {
	r.ctrlMu.Lock()
	defer r.ctrlMu.Unlock()

	if ctrl, ok := r.controllers[board]; ok {
		return ctrl, nil
	}

	raw, ok := r.gpibBoards[board]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoController, board)
	}

	loc, err := ParseLocator(raw)
	if err != nil {
		return nil, err
	}
	if loc.Kind() == KindGPIB {
		return nil, fmt.Errorf("%w: controller locator %q must not itself be GPIB", ErrInvalidLocator, raw)
	}

	port, err := r.Acquire(loc, r.gpibOpts[board])
	if err != nil {
		return nil, err
	}

	ctrl, err := NewPrologixController(board, port)
	if err != nil {
		return nil, err
	}
	r.controllers[board] = ctrl

	return ctrl, nil
}
