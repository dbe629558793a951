// Package store holds client state behind a reducer and runs saga handlers
// for dispatched actions on a single effect goroutine.
package store

import (
	"context"
	"sync"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// Action is a tagged message. Type strings are namespaced "entity/EVENT".
type Action struct {
	Type    string
	Payload any
}

type Reducer[S any] func(state S, action Action) S

// Handler runs for every queued action whose type it watches.
type Handler[S any] func(fx Effects[S], action Action)

type options struct {
	log *logger.Logger
	ctx context.Context
}

type Option func(*options)

func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithContext sets the parent of the context handed to handlers.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

type Store[S any] struct {
	log     *logger.Logger
	reducer Reducer[S]

	// dispatchMu orders reduce+notify so subscribers see states in order.
	dispatchMu sync.Mutex
	stateMu    sync.RWMutex
	state      S
	subs       map[int]func(S, Action)
	nextSub    int

	qmu      sync.Mutex
	cond     *sync.Cond
	queue    []Action
	watchers map[string][]Handler[S]
	busy     bool
	idle     chan struct{}
	closed   bool

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New starts the effect goroutine; Close stops it.
func New[S any](initial S, reducer Reducer[S], opts ...Option) *Store[S] {
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	s := &Store[S]{
		log:      o.log.With("component", "Store"),
		reducer:  reducer,
		state:    initial,
		subs:     make(map[int]func(S, Action)),
		watchers: make(map[string][]Handler[S]),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.qmu)
	go s.run()
	return s
}

func (s *Store[S]) State() S {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers fn to run after every reduction. Subscribers must not
// dispatch; they run while dispatch order is held.
func (s *Store[S]) Subscribe(fn func(state S, action Action)) (unsubscribe func()) {
	s.dispatchMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.dispatchMu.Unlock()
	return func() {
		s.dispatchMu.Lock()
		delete(s.subs, id)
		s.dispatchMu.Unlock()
	}
}

// TakeEvery runs h for every future action of the given type.
func (s *Store[S]) TakeEvery(actionType string, h Handler[S]) {
	s.qmu.Lock()
	s.watchers[actionType] = append(s.watchers[actionType], h)
	s.qmu.Unlock()
}

// Dispatch reduces the action synchronously, notifies subscribers and then
// queues the action for handlers. After Close only the reduction happens.
func (s *Store[S]) Dispatch(a Action) {
	s.dispatchMu.Lock()
	s.stateMu.Lock()
	if s.reducer != nil {
		s.state = s.reducer(s.state, a)
	}
	next := s.state
	s.stateMu.Unlock()
	for _, fn := range s.subs {
		fn(next, a)
	}
	s.dispatchMu.Unlock()

	s.qmu.Lock()
	defer s.qmu.Unlock()
	if s.closed || len(s.watchers[a.Type]) == 0 {
		return
	}
	if !s.busy {
		s.busy = true
		s.idle = make(chan struct{})
	}
	s.queue = append(s.queue, a)
	s.cond.Signal()
}

// Settle blocks until the queue is drained and no handler is running.
func (s *Store[S]) Settle(ctx context.Context) error {
	for {
		s.qmu.Lock()
		if s.closed || !s.busy {
			s.qmu.Unlock()
			return nil
		}
		idle := s.idle
		s.qmu.Unlock()
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels the handler context, waits for the running handler to
// return and drops anything still queued.
func (s *Store[S]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.qmu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.qmu.Unlock()
		<-s.done

		s.qmu.Lock()
		if s.busy {
			s.busy = false
			s.queue = nil
			close(s.idle)
		}
		s.qmu.Unlock()
	})
}

func (s *Store[S]) run() {
	defer close(s.done)
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.qmu.Unlock()
			return
		}
		a := s.queue[0]
		s.queue[0] = Action{}
		s.queue = s.queue[1:]
		handlers := append([]Handler[S](nil), s.watchers[a.Type]...)
		s.qmu.Unlock()

		fx := Effects[S]{store: s, ctx: s.ctx}
		for _, h := range handlers {
			s.invoke(h, fx, a)
		}

		s.qmu.Lock()
		if len(s.queue) == 0 && s.busy {
			s.busy = false
			close(s.idle)
		}
		s.qmu.Unlock()
	}
}

func (s *Store[S]) invoke(h Handler[S], fx Effects[S], a Action) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Saga handler panic", "action", a.Type, "panic", r)
		}
	}()
	h(fx, a)
}

// Effects is what a handler may do: read state, dispatch, and observe
// cancellation.
type Effects[S any] struct {
	store *Store[S]
	ctx   context.Context
}

// Put dispatches a; handlers watching it run after the current one returns.
func (fx Effects[S]) Put(a Action) { fx.store.Dispatch(a) }

func (fx Effects[S]) Select() S { return fx.store.State() }

func (fx Effects[S]) Context() context.Context { return fx.ctx }
