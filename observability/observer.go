// Package observability defines the metrics surface the server reports
// through as connections are accepted and driven through the protocol
// engines. It mirrors the shape of the original tunnel/RPC observers: a
// small interface with a no-op default, plus a swappable atomic holder
// for wiring a concrete exporter at startup.
package observability

import (
	"sync"
	"sync/atomic"
)

// Observer receives connection and protocol-outcome events. Every
// method must be safe to call from many goroutines concurrently, since
// one call happens per accepted connection.
type Observer interface {
	ConnOpened()
	ConnClosed()
	Registered(ok bool)
	Reconnected(ok bool)
	Uploaded()
	CRCResult(outcome CRCOutcome)
}

// CRCOutcome classifies how an upload's CRC-confirmation sub-dialog ended.
type CRCOutcome string

const (
	CRCOutcomeConfirmed CRCOutcome = "confirmed" // client-reported code 900
	CRCOutcomeRetrying  CRCOutcome = "retrying"   // client-reported code 901
	CRCOutcomeAbandoned CRCOutcome = "abandoned"  // client-reported code 902
	CRCOutcomeInvalid   CRCOutcome = "invalid"    // any other code
)

type noopObserver struct{}

func (noopObserver) ConnOpened()          {}
func (noopObserver) ConnClosed()          {}
func (noopObserver) Registered(bool)      {}
func (noopObserver) Reconnected(bool)     {}
func (noopObserver) Uploaded()            {}
func (noopObserver) CRCResult(CRCOutcome) {}

// NoopObserver is a zero-cost observer used when metrics are disabled.
var NoopObserver Observer = noopObserver{}

// AtomicObserver swaps its delegate at runtime, so the Prometheus
// adapter (or any other exporter) can be attached after the server has
// already started accepting connections.
type AtomicObserver struct {
	once sync.Once
	v    atomic.Value
}

type observerHolder struct {
	obs Observer
}

// NewAtomicObserver returns an initialized atomic observer defaulting to NoopObserver.
func NewAtomicObserver() *AtomicObserver {
	a := &AtomicObserver{}
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	return a
}

// Set replaces the delegate, falling back to the no-op observer on nil.
func (a *AtomicObserver) Set(obs Observer) {
	if obs == nil {
		obs = NoopObserver
	}
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	a.v.Store(&observerHolder{obs: obs})
}

func (a *AtomicObserver) load() Observer {
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	return a.v.Load().(*observerHolder).obs
}

func (a *AtomicObserver) ConnOpened()              { a.load().ConnOpened() }
func (a *AtomicObserver) ConnClosed()              { a.load().ConnClosed() }
func (a *AtomicObserver) Registered(ok bool)        { a.load().Registered(ok) }
func (a *AtomicObserver) Reconnected(ok bool)       { a.load().Reconnected(ok) }
func (a *AtomicObserver) Uploaded()                 { a.load().Uploaded() }
func (a *AtomicObserver) CRCResult(o CRCOutcome)    { a.load().CRCResult(o) }

// Multi fans every event out to all of obs in order. Useful for wiring a
// Prometheus exporter and a dashboard feed to the same server.
func Multi(obs ...Observer) Observer {
	return multiObserver{obs: obs}
}

type multiObserver struct {
	obs []Observer
}

func (m multiObserver) ConnOpened() {
	for _, o := range m.obs {
		o.ConnOpened()
	}
}

func (m multiObserver) ConnClosed() {
	for _, o := range m.obs {
		o.ConnClosed()
	}
}

func (m multiObserver) Registered(ok bool) {
	for _, o := range m.obs {
		o.Registered(ok)
	}
}

func (m multiObserver) Reconnected(ok bool) {
	for _, o := range m.obs {
		o.Reconnected(ok)
	}
}

func (m multiObserver) Uploaded() {
	for _, o := range m.obs {
		o.Uploaded()
	}
}

func (m multiObserver) CRCResult(outcome CRCOutcome) {
	for _, o := range m.obs {
		o.CRCResult(outcome)
	}
}
