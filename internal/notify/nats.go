package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
)

// NatsPublisher publishes events to a NATS server as JSON messages.
type NatsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNatsPublisher connects to the NATS server at url.
func NewNatsPublisher(url string, logger zerolog.Logger) (*NatsPublisher, error) {
	const op = "notify.connect"

	conn, err := nats.Connect(url,
		nats.Name("sindri"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, domain.External(err, op, "Unable to connect to event bus")
	}

	return &NatsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "nats").Logger(),
	}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, subject string, payload any) error {
	const op = "notify.publish"

	data, err := json.Marshal(payload)
	if err != nil {
		return domain.Internal(err, op, "Unable to encode event payload")
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("event publish failed")
		return domain.External(err, op, "Unable to publish event")
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")
	return nil
}

func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("nats drain failed")
	}
}
