// internal/event/mqtt.go
package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/model"
)

// Publisher is the subset of paho.Client the relay needs
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Relay republishes bus events to an MQTT broker, one topic per event name
type Relay struct {
	config    config.MQTTConfig
	client    paho.Client
	publisher Publisher
	bus       *Bus
	registry  *Registry
	logger    *zap.Logger
}

// NewRelay creates a relay with a paho client for cfg
func NewRelay(cfg config.MQTTConfig, bus *Bus, registry *Registry, logger *zap.Logger) *Relay {
	r := &Relay{
		config:   cfg,
		bus:      bus,
		registry: registry,
		logger:   logger.With(zap.String("component", "mqtt-relay")),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			r.logger.Warn("MQTT connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(paho.Client) {
			r.logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	r.client = paho.NewClient(opts)
	r.publisher = r.client
	return r
}

// NewRelayWithPublisher creates a relay over an existing publisher
func NewRelayWithPublisher(cfg config.MQTTConfig, publisher Publisher, bus *Bus, registry *Registry, logger *zap.Logger) *Relay {
	return &Relay{
		config:    cfg,
		publisher: publisher,
		bus:       bus,
		registry:  registry,
		logger:    logger,
	}
}

// Connect establishes the broker connection
func (r *Relay) Connect(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	token := r.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}

// Run relays events until ctx is done. The relay counts as one listener for
// its lifetime.
func (r *Relay) Run(ctx context.Context) {
	events, unsubscribe := r.bus.Subscribe()
	defer unsubscribe()

	r.registry.Register()
	defer r.registry.Remove(1)

	for {
		select {
		case <-ctx.Done():
			if r.client != nil {
				r.client.Disconnect(250)
			}
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := r.publish(event); err != nil {
				r.logger.Warn("Failed to relay event",
					zap.String("event_name", string(event.Name)),
					zap.Error(err),
				)
			}
		}
	}
}

func (r *Relay) publish(event model.PrinterEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	topic := strings.TrimSuffix(r.config.TopicPrefix, "/") + "/" + string(event.Name)
	token := r.publisher.Publish(topic, r.config.QoS, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}
