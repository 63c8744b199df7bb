// Package natsadapter publishes contact lifecycle events to NATS.
package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/agenda/internal/domain/event"
)

// DefaultSubjectPrefix prefixes every event subject.
const DefaultSubjectPrefix = "agenda."

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	IsConnected() bool
	Drain() error
}

// Publisher sends events as JSON on <prefix><event type>,
// e.g. agenda.contact.created.
type Publisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

// Connect dials url and returns a publisher. The connection retries in the
// background, so a broker that is down at startup does not block the service.
func Connect(url, subjectPrefix string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("agenda"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logger != nil && err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return newPublisher(nc, subjectPrefix, logger), nil
}

func newPublisher(c conn, prefix string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{conn: c, prefix: prefix, logger: logger}
}

// Publish sends e. Core NATS publishing is fire-and-forget; delivery is not confirmed.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := p.Subject(e.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("Event published",
		zap.String("subject", subject),
		zap.String("event_id", e.ID),
	)
	return nil
}

// Subject returns the subject events of type t are published on.
func (p *Publisher) Subject(t event.Type) string {
	return p.prefix + string(t)
}

// HealthCheck reports whether the broker connection is up.
func (p *Publisher) HealthCheck(_ context.Context) error {
	if !p.conn.IsConnected() {
		return errors.New("nats: not connected")
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}
