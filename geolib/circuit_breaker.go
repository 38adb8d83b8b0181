package geolib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker protects upstreams which are shared by all locate
// invocations. If upstream fails more than openThreshold times in a
// row, all requests are rejected for halfOpenTimeout. After that a
// single trial request decides if circuit breaker closes or opens
// again. Failures in closed state are forgotten each
// resetFailuresTimeout.
type circuitBreaker struct {
	mutex sync.Mutex
	state circuitBreakerState

	halfOpenTimer        *time.Timer
	failuresCleanupTimer *time.Timer

	halfOpenAttempted bool
	failuresCount     uint32

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	if !c.acquire() {
		return nil, ErrCircuitBreakerOpened
	}

	resp, err := callback(ctx)

	c.report(err)

	return resp, err
}

func (c *circuitBreaker) State() circuitBreakerState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}

func (c *circuitBreaker) acquire() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case circuitBreakerStateClosed:
		return true
	case circuitBreakerStateHalfOpened:
		if c.halfOpenAttempted {
			return false
		}

		c.halfOpenAttempted = true

		return true
	}

	return false
}

func (c *circuitBreaker) report(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch {
	case errors.Is(err, ErrCircuitBreakerIgnore):
		if c.state == circuitBreakerStateHalfOpened {
			c.halfOpenAttempted = false
		}
	case err == nil:
		if c.state != circuitBreakerStateOpened {
			c.switchState(circuitBreakerStateClosed)
		}
	case c.state == circuitBreakerStateHalfOpened:
		c.switchState(circuitBreakerStateOpened)
	case c.state == circuitBreakerStateClosed:
		c.failuresCount++

		if c.failuresCount > c.openThreshold {
			c.switchState(circuitBreakerStateOpened)
		}
	}
}

// switchState has to be called under the mutex.
func (c *circuitBreaker) switchState(state circuitBreakerState) {
	switch state {
	case circuitBreakerStateClosed:
		c.stopTimer(&c.halfOpenTimer)
		c.ensureTimer(&c.failuresCleanupTimer, c.resetFailuresTimeout, c.resetFailures)
	case circuitBreakerStateHalfOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.stopTimer(&c.halfOpenTimer)
	case circuitBreakerStateOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.ensureTimer(&c.halfOpenTimer, c.halfOpenTimeout, c.tryHalfOpen)
	}

	c.failuresCount = 0
	c.halfOpenAttempted = false
	c.state = state
}

func (c *circuitBreaker) resetFailures() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.failuresCleanupTimer = nil

	if c.state == circuitBreakerStateClosed {
		c.switchState(circuitBreakerStateClosed)
	}
}

func (c *circuitBreaker) tryHalfOpen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.halfOpenTimer = nil

	if c.state == circuitBreakerStateOpened {
		c.switchState(circuitBreakerStateHalfOpened)
	}
}

func (c *circuitBreaker) stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopTimer(&c.failuresCleanupTimer)
	c.stopTimer(&c.halfOpenTimer)
}

func (c *circuitBreaker) stopTimer(timerRef **time.Timer) {
	if *timerRef != nil {
		(*timerRef).Stop()
		*timerRef = nil
	}
}

func (c *circuitBreaker) ensureTimer(timerRef **time.Timer, timeout time.Duration, callback func()) {
	if *timerRef == nil {
		*timerRef = time.AfterFunc(timeout, callback)
	}
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}

	cb.switchState(circuitBreakerStateClosed)

	return cb
}
