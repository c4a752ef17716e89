package alerts

import (
	"context"
	"errors"
	"log/slog"

	"spccli/internal/config"
)

// Delivery is the outcome of publishing to one channel.
type Delivery struct {
	Channel string
	Alerts  int
	Err     error
}

// Dispatcher forwards alerts to every publisher.
type Dispatcher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher for publishers.
func NewDispatcher(logger *slog.Logger, publishers ...Publisher) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publishers: publishers, logger: logger}
}

// FromConfig creates a dispatcher with the publishers enabled in cfg.
func FromConfig(cfg config.AlertsConfig, logger *slog.Logger) (*Dispatcher, error) {
	var publishers []Publisher
	if cfg.Kafka.Enabled() {
		p, err := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	if cfg.Webhook.Enabled() {
		publishers = append(publishers, NewWebhookPublisher(cfg.Webhook.URL, cfg.Webhook.Timeout))
	}
	return NewDispatcher(logger, publishers...), nil
}

// Enabled reports whether any publisher is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.publishers) > 0
}

// Channels returns the publisher names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.publishers))
	for i, p := range d.publishers {
		names[i] = p.Name()
	}
	return names
}

// Dispatch publishes alerts to every channel and reports each outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []Alert) []Delivery {
	deliveries := make([]Delivery, 0, len(d.publishers))
	for _, p := range d.publishers {
		err := p.Publish(ctx, alerts)
		if err != nil {
			d.logger.ErrorContext(ctx, "alert delivery failed",
				slog.String("channel", p.Name()),
				slog.Int("alerts", len(alerts)),
				slog.String("error", err.Error()))
		} else {
			d.logger.InfoContext(ctx, "alerts delivered",
				slog.String("channel", p.Name()),
				slog.Int("alerts", len(alerts)))
		}
		deliveries = append(deliveries, Delivery{Channel: p.Name(), Alerts: len(alerts), Err: err})
	}
	return deliveries
}

// Close closes every publisher.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, p := range d.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
