// Package loader tracks the idle/loading/success/error lifecycle of a remote
// resource and guarantees that only the newest request can commit a result.
package loader

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/TiagoSD22/amigurumi-store/internal/events"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

// Fetcher produces the resource. It must honour ctx cancellation.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Option configures a Loader.
type Option[T any] func(*Loader[T])

// WithLogger sets the logger used for fetch failures and stale drops.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(ld *Loader[T]) { ld.logger = l }
}

// WithMessage sets the mapping from a fetch error to the message shown to
// the shopper.
func WithMessage[T any](fn func(error) string) Option[T] {
	return func(ld *Loader[T]) { ld.message = fn }
}

// WithRecorder sets the observability sink.
func WithRecorder[T any](r events.Recorder) Option[T] {
	return func(ld *Loader[T]) { ld.recorder = r }
}

// WithOnChange registers a callback invoked after every committed state.
// Callbacks run in commit order. They may read the loader but must not
// trigger it.
func WithOnChange[T any](fn func(State[T])) Option[T] {
	return func(ld *Loader[T]) { ld.onChange = append(ld.onChange, fn) }
}

// generation is one issued request.
type generation struct {
	token   uint64
	done    chan struct{}
	cancel  context.CancelFunc
	settled bool
}

// finish closes done once; callers hold Loader.mu.
func (g *generation) finish() {
	if g.settled {
		return
	}
	g.settled = true
	g.cancel()
	close(g.done)
}

// Loader owns a single State cell. Every trigger issues a new token; a
// completing fetch commits only while its token is still the latest, so a
// response that arrives after a newer trigger is dropped without effect.
type Loader[T any] struct {
	name     string
	fetch    Fetcher[T]
	logger   *slog.Logger
	recorder events.Recorder
	message  func(error) string
	onChange []func(State[T])

	mu     sync.Mutex
	state  State[T]
	token  uint64
	gen    *generation
	commit uint64

	// Notifications are delivered strictly in commit order.
	notifyMu   sync.Mutex
	notifyTurn *sync.Cond
	delivered  uint64
}

// New creates an idle loader. name labels logs and metrics.
func New[T any](name string, fetch Fetcher[T], opts ...Option[T]) *Loader[T] {
	ld := &Loader[T]{
		name:     name,
		fetch:    fetch,
		logger:   slog.Default(),
		recorder: events.Nop{},
		message:  DefaultMessage,
		state:    Idle[T](),
	}
	ld.notifyTurn = sync.NewCond(&ld.notifyMu)
	for _, opt := range opts {
		opt(ld)
	}
	ld.logger = logger.Component(ld.logger, "loader").With(slog.String("loader", name))
	return ld
}

// DefaultMessage derives a short message from the failure kind.
func DefaultMessage(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return "Not found"
	case apperrors.KindNetworkFailure:
		return "Unable to reach the store right now"
	default:
		return "Something went wrong"
	}
}

// Name returns the loader's label.
func (l *Loader[T]) Name() string { return l.name }

// State returns the current snapshot.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Token returns the most recently issued request token, 0 before the first
// trigger.
func (l *Loader[T]) Token() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

// Trigger fetches with the loader's own producer. See Run.
func (l *Loader[T]) Trigger(ctx context.Context) uint64 {
	return l.Run(ctx, l.fetch)
}

// Run moves the loader to Loading and starts fetch in its own goroutine. Any
// request still in flight is superseded and its context cancelled. The
// returned token identifies this request.
func (l *Loader[T]) Run(ctx context.Context, fetch Fetcher[T]) uint64 {
	fetchCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.token++
	token := l.token
	if l.gen != nil {
		l.gen.finish()
	}
	gen := &generation{token: token, done: make(chan struct{}), cancel: cancel}
	l.gen = gen
	l.state = Loading[T]()
	seq := l.nextCommit()
	l.mu.Unlock()
	l.notify(ctx, seq, Loading[T](), token)

	go l.execute(ctx, fetchCtx, fetch, gen)
	return token
}

func (l *Loader[T]) execute(ctx, fetchCtx context.Context, fetch Fetcher[T], gen *generation) {
	start := time.Now()
	data, err := fetch(fetchCtx)
	elapsed := time.Since(start)

	l.mu.Lock()
	if gen.token != l.token {
		l.mu.Unlock()
		l.dropStale(ctx, gen.token, elapsed)
		return
	}

	var next State[T]
	if err != nil {
		next = Failure[T](l.message(err), apperrors.KindOf(err))
	} else {
		next = Success(data)
	}
	l.state = next
	gen.finish()
	seq := l.nextCommit()
	l.mu.Unlock()

	outcome := string(StatusSuccess)
	if err != nil {
		outcome = string(StatusError)
		l.logger.ErrorContext(ctx, "fetch failed",
			slog.Uint64("token", gen.token),
			slog.String("kind", string(next.Kind())),
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed),
		)
	}
	fetchDuration.WithLabelValues(l.name, outcome).Observe(elapsed.Seconds())
	l.notify(ctx, seq, next, gen.token)
}

func (l *Loader[T]) dropStale(ctx context.Context, token uint64, elapsed time.Duration) {
	staleTotal.WithLabelValues(l.name).Inc()
	fetchDuration.WithLabelValues(l.name, string(apperrors.KindSuperseded)).Observe(elapsed.Seconds())
	l.logger.DebugContext(ctx, "dropping stale result",
		slog.Uint64("token", token),
		slog.String("reason", apperrors.Superseded(l.name).Error()),
	)
	l.recorder.Record(ctx, events.New(events.TypeStaleDropped, l.name, map[string]string{
		"token": strconv.FormatUint(token, 10),
	}))
}

// nextCommit numbers a committed state; callers hold mu.
func (l *Loader[T]) nextCommit() uint64 {
	seq := l.commit
	l.commit++
	return seq
}

// notify waits for commit seq's turn and then delivers s.
func (l *Loader[T]) notify(ctx context.Context, seq uint64, s State[T], token uint64) {
	l.notifyMu.Lock()
	for l.delivered != seq {
		l.notifyTurn.Wait()
	}
	defer func() {
		l.delivered++
		l.notifyTurn.Broadcast()
		l.notifyMu.Unlock()
	}()

	transitionsTotal.WithLabelValues(l.name, string(s.Status())).Inc()

	attrs := map[string]string{
		"state": string(s.Status()),
		"token": strconv.FormatUint(token, 10),
	}
	if s.Status() == StatusError {
		attrs["kind"] = string(s.Kind())
	}
	l.recorder.Record(ctx, events.New(events.TypeStateChanged, l.name, attrs))

	for _, fn := range l.onChange {
		fn(s)
	}
}

// Wait blocks until the latest request settles and returns the committed
// state. It follows supersession: if a newer request is issued while
// waiting, Wait continues with that one. An idle loader returns immediately.
func (l *Loader[T]) Wait(ctx context.Context) (State[T], error) {
	for {
		l.mu.Lock()
		gen, state := l.gen, l.state
		l.mu.Unlock()

		if gen == nil || state.IsSettled() {
			return state, nil
		}
		select {
		case <-gen.done:
		case <-ctx.Done():
			return l.State(), ctx.Err()
		}
	}
}
