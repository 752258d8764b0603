// Package wifi abstracts the network link the device firmware got from its
// WiFi stack. The daemon has no radio; reachability of a well-known address
// stands in for "association succeeded".
package wifi

import (
	"net"
	"sync"
	"time"
)

// Link reports link state to the scheduler and the fetch client.
type Link interface {
	Connected() bool
}

// DialLink decides link state by dialling a probe address. Results are
// cached briefly so per-tick callers do not hammer the resolver. Safe for
// concurrent use: the scheduler and the portal's handlers both probe it.
type DialLink struct {
	addr    string
	timeout time.Duration

	mu       sync.Mutex
	cacheFor time.Duration
	lastAt   time.Time
	lastUp   bool

	now  func() time.Time
	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

func NewDialLink(addr string, timeout time.Duration) *DialLink {
	return &DialLink{
		addr:     addr,
		timeout:  timeout,
		cacheFor: 5 * time.Second,
		now:      time.Now,
		dial:     net.DialTimeout,
	}
}

// Connected probes the link, reusing the previous answer within the cache
// window. The probe itself is bounded by the dial timeout; the lock is held
// across it so concurrent callers share a single dial.
func (l *DialLink) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.lastAt.IsZero() && now.Sub(l.lastAt) < l.cacheFor {
		return l.lastUp
	}

	conn, err := l.dial("tcp", l.addr, l.timeout)
	if err == nil {
		conn.Close()
	}
	l.lastAt = now
	l.lastUp = err == nil
	return l.lastUp
}
