// Package repository is the sqlx-backed persistence layer: one file per
// aggregate, each wrapping prepared-statement access behind the port
// interfaces internal/agent/tools and internal/orchestrator declare.
package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultQueryTimeout = 30 * time.Second

var (
	repoOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_operations_total",
			Help: "Total number of repository operations.",
		},
		[]string{"entity", "operation", "status"},
	)

	repoOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_operation_duration_seconds",
			Help:    "Duration of repository operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "operation"},
	)
)

// Open connects to Postgres and configures the pool.
func Open(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

func observe(entity, operation string, start time.Time, err error) {
	repoOpDuration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	repoOps.WithLabelValues(entity, operation, status).Inc()
}
