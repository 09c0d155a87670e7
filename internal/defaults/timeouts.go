package defaults

import "time"

const (
	// ReadTimeout is the default per-read deadline applied to a
	// connection between protocol steps. It is generous enough that no
	// compliant client exchange ever triggers it; it only bounds how
	// long a stalled or abandoned connection holds its goroutine.
	ReadTimeout = 60 * time.Second

	// MetricsAddr is a conventional bind address for the Prometheus
	// /metrics endpoint. cmd/filedropd does not use it: metrics stay
	// disabled unless a listen address is given.
	MetricsAddr = ":9090"

	// DashboardAddr is a conventional bind address for the admin websocket
	// feed. cmd/filedropd does not use it: the dashboard stays disabled
	// unless a listen address is given.
	DashboardAddr = ":9091"
)
