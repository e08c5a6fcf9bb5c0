package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gotacacs "github.com/vitalvas/tacacsd"
	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/metrics"
	"github.com/vitalvas/tacacsd/internal/reader"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// StateStore is the subset of corestate.Store/redisstate.Store the Daemon
// needs — narrowed so either backend plugs in identically.
type StateStore interface {
	machine.StateStore
	Len() int
}

// Daemon owns the listener's accept loop, the shared StateStore and policy
// Evaluator, and the bookkeeping needed to shut every connection's
// goroutine down cleanly.
type Daemon struct {
	listener gotacacs.Listener
	store    StateStore
	policy   machine.Evaluator
	secret   staticSecret
	metrics  *metrics.Metrics
	log      *zap.Logger

	wg         sync.WaitGroup
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// New builds a Daemon. evaluator is typically a *policy.Registry or a
// *policy.HTTPDelegate; store is typically a *corestate.Store or a
// *redisstate.Store.
func New(listener gotacacs.Listener, store StateStore, evaluator machine.Evaluator, secret []byte, log *zap.Logger) *Daemon {
	if log == nil {
		log = zap.NewNop()
	}
	return &Daemon{
		listener:   listener,
		store:      store,
		policy:     evaluator,
		secret:     staticSecret(secret),
		metrics:    metrics.New(),
		log:        log,
		shutdownCh: make(chan struct{}),
	}
}

// Serve accepts connections until the listener errs or Shutdown is called.
// It returns nil on a clean shutdown.
func (d *Daemon) Serve() error {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdownCh:
				return nil
			default:
				return fmt.Errorf("daemon: accept: %w", err)
			}
		}

		d.wg.Add(1)
		d.metrics.RecordConnectionOpened()
		go d.handleConnection(conn)
	}
}

// Shutdown closes the listener and waits for in-flight connections to
// finish, or for ctx to expire, whichever comes first.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.shutdownCh) })
	d.listener.Close()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Daemon) handleConnection(conn gotacacs.Conn) {
	defer d.wg.Done()
	defer d.metrics.RecordConnectionClosed()
	defer conn.Close()

	r := reader.New(conn, d.secret, d.log)
	transport := reader.NewTransport(conn, d.secret)
	m := machine.New(d.store, d.policy, transport, d.log)

	log := d.log.With(zap.String("remote_addr", conn.RemoteAddr().String()), zap.String("conn_id", uuid.UUID(r.ConnID()).String()))

	ctx := context.Background()
	for {
		select {
		case <-d.shutdownCh:
			return
		default:
		}

		req, err := r.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("connection read failed", zap.Error(err))
			}
			return
		}

		d.metrics.SetStateStoreSize(d.store.Len())
		if err := m.Run(ctx, req); err != nil {
			log.Warn("session machine run failed", zap.Error(err))
			return
		}
		d.metrics.RecordReplyStatus(req.Kind, replyStatus(req))
	}
}

// replyStatus returns the terminal status string the StatusMapper wrote
// into req.Reply for req.Kind, whichever of the three status attributes
// that is.
func replyStatus(req *machine.Request) string {
	switch req.Kind {
	case statusmap.Authentication:
		status, _ := req.Reply.GetString(attrs.AuthenticationStatus)
		return status
	case statusmap.Authorization:
		status, _ := req.Reply.GetString(attrs.AuthorizationStatus)
		return status
	case statusmap.Accounting:
		status, _ := req.Reply.GetString(attrs.AccountingStatus)
		return status
	default:
		return ""
	}
}
