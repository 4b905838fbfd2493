package graph

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RequestObserver receives one event per Graph request, successful or not.
type RequestObserver interface {
	ObserveRequest(operation string, status int, duration time.Duration)
}

// ZapRequestObserver logs request latency at debug level.
type ZapRequestObserver struct {
	log *zap.Logger
}

func NewZapRequestObserver(log *zap.Logger) *ZapRequestObserver {
	return &ZapRequestObserver{log: log}
}

func (o *ZapRequestObserver) ObserveRequest(operation string, status int, duration time.Duration) {
	if o == nil || o.log == nil {
		return
	}
	o.log.Debug("graph request",
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}

// AsyncRequestObserver decouples observation from the request path through
// a bounded channel. Events beyond the buffer are dropped, not blocked on.
type AsyncRequestObserver struct {
	next    RequestObserver
	events  chan requestEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type requestEvent struct {
	operation string
	status    int
	duration  time.Duration
}

func NewAsyncRequestObserver(next RequestObserver, buffer int) *AsyncRequestObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncRequestObserver{
		next:   next,
		events: make(chan requestEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveRequest(ev.operation, ev.status, ev.duration)
		}
	}()

	return o
}

func (o *AsyncRequestObserver) ObserveRequest(operation string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	o.mu.RLock()
	if o.closed {
		o.mu.RUnlock()
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- requestEvent{operation: operation, status: status, duration: duration}:
	default:
		o.dropped.Add(1)
	}
	o.mu.RUnlock()
}

func (o *AsyncRequestObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

func (o *AsyncRequestObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
