package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ClassifierChecker checks chat provider availability.
type ClassifierChecker interface {
	HealthCheck(ctx context.Context) error
}
