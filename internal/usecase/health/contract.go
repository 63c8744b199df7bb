package health

import "context"

// Pinger is the database connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker is the check of an optional dependency such as the event broker.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
