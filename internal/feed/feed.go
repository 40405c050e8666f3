// Package feed publishes closed pairings to NATS for downstream consumers.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"pairing_parser/internal/pairing"
)

// DefaultSubject is the subject pairings publish to unless configured
// otherwise.
const DefaultSubject = "pairings.extracted"

// Publisher sends each closed pairing as a JSON message.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// Connect connects to a NATS server. An empty subject uses DefaultSubject.
func Connect(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("pairing_parser"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends one pairing.
func (p *Publisher) Publish(pr *pairing.Pairing) error {
	data, err := json.Marshal(pr)
	if err != nil {
		return fmt.Errorf("marshal pairing %s: %w", pr.Sequence, err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish pairing %s: %w", pr.Sequence, err)
	}
	return nil
}

// Close flushes pending messages and drains the connection.
func (p *Publisher) Close() error {
	if err := p.nc.Flush(); err != nil {
		_ = p.nc.Drain()
		return fmt.Errorf("flush: %w", err)
	}
	return p.nc.Drain()
}
