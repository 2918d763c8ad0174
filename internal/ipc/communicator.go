package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/tutunian/cryptomator/internal/logging"
)

// Role identifies which side of the endpoint a Communicator holds. It is
// fixed at construction for the lifetime of the instance.
type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

const (
	connectTimeout = 2 * time.Second
	sendTimeout    = 5 * time.Second
	readTimeout    = 10 * time.Second
)

// ErrNoEndpoint reports that every candidate endpoint was unusable for a
// reason other than simple occupancy.
var ErrNoEndpoint = errors.New("ipc: no usable endpoint")

// ErrWrongRole reports a role-specific operation invoked on the wrong role.
// This is a caller contract violation, never an expected runtime condition.
var ErrWrongRole = errors.New("ipc: operation not valid for this role")

// errOccupied marks a bind attempt that lost the race to another process.
// It triggers a client-role retry rather than surfacing as a failure.
var errOccupied = errors.New("ipc: endpoint occupied")

// Communicator owns exactly one endpoint in exactly one role.
type Communicator struct {
	role   Role
	path   string
	logger *slog.Logger

	conn net.Conn // client role only

	listener net.Listener // server role only
	lock     *flock.Flock
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	listening atomic.Bool
	closed    atomic.Bool
}

// Create establishes a role against the ordered candidate socket paths.
// Per candidate: connect as a client; if nothing is listening, bind as the
// server; if the bind loses a race to another process, connect once more.
// Candidates that fail with hard errors are recorded and skipped. Create
// fails only when every candidate is exhausted without a role.
func Create(candidates []string, logger *slog.Logger) (*Communicator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", ErrNoEndpoint)
	}

	var errs []error
	for _, path := range candidates {
		conn, dialErr := dialSocket(path)
		if dialErr == nil {
			logger.Debug("connected to running instance", logging.String("socket", path))
			return newClient(path, conn, logger), nil
		}
		if !isNotListening(dialErr) {
			errs = append(errs, fmt.Errorf("connect %s: %w", path, dialErr))
			continue
		}

		listener, lock, bindErr := bindSocket(path)
		if bindErr == nil {
			logger.Debug("bound ipc socket", logging.String("socket", path))
			return newServer(path, listener, lock, logger), nil
		}
		if errors.Is(bindErr, errOccupied) {
			// Another process bound between the connect probe and the bind
			// attempt. It is the server now; try once more as a client. The
			// winner may still be between lock acquisition and listen, so
			// the retry polls within the connect timeout.
			conn, dialErr = dialSocketRetry(path)
			if dialErr == nil {
				logger.Debug("connected to running instance after bind race",
					logging.String("socket", path))
				return newClient(path, conn, logger), nil
			}
			errs = append(errs, fmt.Errorf("connect %s after lost bind race: %w", path, dialErr))
			continue
		}
		errs = append(errs, fmt.Errorf("bind %s: %w", path, bindErr))
	}

	return nil, fmt.Errorf("%w: %w", ErrNoEndpoint, errors.Join(errs...))
}

func newClient(path string, conn net.Conn, logger *slog.Logger) *Communicator {
	return &Communicator{
		role:   RoleClient,
		path:   path,
		conn:   conn,
		logger: logger,
	}
}

func newServer(path string, listener net.Listener, lock *flock.Flock, logger *slog.Logger) *Communicator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Communicator{
		role:     RoleServer,
		path:     path,
		listener: listener,
		lock:     lock,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func dialSocket(path string) (net.Conn, error) {
	return net.DialTimeout("unix", path, connectTimeout)
}

func dialSocketRetry(path string) (net.Conn, error) {
	deadline := time.Now().Add(connectTimeout)
	for {
		conn, err := dialSocket(path)
		if err == nil {
			return conn, nil
		}
		if !isNotListening(err) || time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// isNotListening distinguishes "no server there" from hard I/O errors.
// ENOENT means no socket file; ECONNREFUSED means a socket file without a
// live listener behind it.
func isNotListening(err error) bool {
	return errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ECONNREFUSED)
}

// bindSocket acquires the candidate exclusively. The sidecar lock file
// arbitrates takeover: holding it proves any leftover socket file is stale
// and safe to remove. A failed TryLock means another process owns the
// candidate, which callers treat as occupancy rather than an error.
func bindSocket(path string) (net.Listener, *flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create socket dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	held, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire socket lock: %w", err)
	}
	if !held {
		return nil, nil, errOccupied
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = lock.Unlock()
		return nil, nil, fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		if errors.Is(err, unix.EADDRINUSE) {
			return nil, nil, errOccupied
		}
		return nil, nil, fmt.Errorf("listen on socket: %w", err)
	}
	return listener, lock, nil
}

// IsClient reports whether another instance was already serving the endpoint.
func (c *Communicator) IsClient() bool {
	return c.role == RoleClient
}

// Role returns the role established at construction.
func (c *Communicator) Role() Role {
	return c.role
}

// Path returns the socket location this communicator is bound or connected to.
func (c *Communicator) Path() string {
	return c.path
}

// SendHandleLaunchArgs transmits this invocation's arguments to the running
// instance. Delivery is fire-and-forget; the caller is expected to exit
// shortly after, so no acknowledgement is awaited.
func (c *Communicator) SendHandleLaunchArgs(args []string) error {
	if c.role != RoleClient {
		return fmt.Errorf("%w: sends require the client role", ErrWrongRole)
	}
	return c.send(Message{Type: MessageLaunchArgs, Args: args})
}

// SendRevealRunningApp asks the running instance to come to the foreground.
func (c *Communicator) SendRevealRunningApp() error {
	if c.role != RoleClient {
		return fmt.Errorf("%w: sends require the client role", ErrWrongRole)
	}
	return c.send(Message{Type: MessageRevealApp})
}

func (c *Communicator) send(msg Message) error {
	if c.closed.Load() {
		return errors.New("ipc: communicator is closed")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(sendTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := writeFrame(c.conn, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Listen starts the background accept loop, dispatching every decoded
// message to handler. The endpoint is long-lived; each client produces one
// short-lived connection. A decode failure drops that connection only, the
// loop keeps accepting until Close.
func (c *Communicator) Listen(handler MessageHandler) error {
	if c.role != RoleServer {
		return fmt.Errorf("%w: listen requires the server role", ErrWrongRole)
	}
	if handler == nil {
		return errors.New("ipc: listen requires a handler")
	}
	if c.closed.Load() {
		return errors.New("ipc: communicator is closed")
	}
	if !c.listening.CompareAndSwap(false, true) {
		return errors.New("ipc: already listening")
	}

	c.logger.Debug("ipc server listening", logging.String("socket", c.path))
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			conn, err := c.listener.Accept()
			if err != nil {
				select {
				case <-c.ctx.Done():
					return
				default:
				}
				c.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			c.wg.Add(1)
			go func(conn net.Conn) {
				defer c.wg.Done()
				c.serveConn(conn, handler)
			}(conn)
		}
	}()
	return nil
}

func (c *Communicator) serveConn(conn net.Conn, handler MessageHandler) {
	defer conn.Close()

	log := c.logger.With(logging.String("conn_id", uuid.NewString()))
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}
		msg, err := readFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Warn("dropping connection after decode failure",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ipc_decode_failed"))
			return
		}
		log.Debug("ipc message received", logging.String("type", msg.Type.String()))
		handler.OnMessage(msg)
	}
}

// Close releases the endpoint. For the server role it stops the accept
// loop, waits for in-flight connections, removes the socket file, and
// releases the exclusive lock so a future process can bind the candidate.
// Close is idempotent; additional calls return nil.
func (c *Communicator) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.role == RoleClient {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
		return nil
	}

	c.cancel()
	closeErr := c.listener.Close()
	c.wg.Wait()

	var errs []error
	if closeErr != nil {
		errs = append(errs, fmt.Errorf("close listener: %w", closeErr))
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove socket: %w", err))
	}
	if err := c.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release socket lock: %w", err))
	}
	return errors.Join(errs...)
}

// CloseUnchecked releases the endpoint and swallows any failure. Suitable
// for shutdown-time invocation where no recovery is possible.
func (c *Communicator) CloseUnchecked() {
	if err := c.Close(); err != nil {
		c.logger.Warn("ipc close failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_close_failed"))
	}
}
