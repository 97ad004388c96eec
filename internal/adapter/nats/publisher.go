// Package nats publishes activity events to a NATS subject.
package nats

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/heartmarshall/featureflags-backend/internal/audit"
	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// HeaderEventType carries the activity type so consumers can filter without
// decoding the body.
const HeaderEventType = "Activity-Type"

// msgPublisher is the subset of *nats.Conn used by Publisher.
type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Publisher is an audit.Subscriber that publishes every event to
// "<subject>.<resource>.<type>".
type Publisher struct {
	conn    msgPublisher
	subject string
}

// NewPublisher creates a Publisher on conn.
func NewPublisher(conn msgPublisher, subject string) *Publisher {
	return &Publisher{conn: conn, subject: strings.TrimSuffix(subject, ".")}
}

// Connect dials url and returns the connection. The caller drains it on
// shutdown.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

func (p *Publisher) Name() string { return "nats" }

// Handle implements audit.Subscriber.
func (p *Publisher) Handle(ctx context.Context, event domain.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := audit.Encode(event)
	if err != nil {
		return err
	}

	msg := &nats.Msg{
		Subject: p.Subject(event),
		Data:    data,
		Header:  make(nats.Header),
	}
	msg.Header.Set(HeaderEventType, event.Type.String())
	if event.Object != nil {
		// JetStream streams deduplicate on this header.
		msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s:%s:%d", event.Type, event.Object.ID, event.Timestamp.UnixNano()))
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish activity event: %w", err)
	}
	return nil
}

// Subject returns the subject event is published to.
func (p *Publisher) Subject(event domain.ActivityEvent) string {
	return p.subject + "." + event.Resource + "." + strings.ToLower(event.Type.String())
}
