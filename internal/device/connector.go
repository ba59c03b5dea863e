// internal/device/connector.go
package device

import (
	"context"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/driver"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
	"printer-bridge/internal/protocol"
)

// Connector opens printer handles
type Connector interface {
	Connect(ctx context.Context, settings model.ConnectionSettings, emulation model.Emulation) (Printer, error)
}

// TransportFactory creates the transport for a printer identifier
type TransportFactory func(settings model.ConnectionSettings, defaults protocol.Defaults, logger *zap.Logger) (protocol.Transport, error)

// TransportConnector opens RawPrinter handles over the protocol transports
type TransportConnector struct {
	registry     *driver.Registry
	defaults     protocol.Defaults
	permissions  PermissionChecker
	options      Options
	newTransport TransportFactory
	logger       *zap.Logger
}

// NewTransportConnector creates a connector. A nil permission checker skips host checks.
func NewTransportConnector(registry *driver.Registry, defaults protocol.Defaults, permissions PermissionChecker, options Options, logger *zap.Logger) *TransportConnector {
	return &TransportConnector{
		registry:     registry,
		defaults:     defaults,
		permissions:  permissions,
		options:      options,
		newTransport: protocol.New,
		logger:       logger,
	}
}

// WithTransportFactory replaces the transport factory
func (c *TransportConnector) WithTransportFactory(factory TransportFactory) *TransportConnector {
	c.newTransport = factory
	return c
}

// Connect checks host access, builds the transport and opens it
func (c *TransportConnector) Connect(ctx context.Context, settings model.ConnectionSettings, emulation model.Emulation) (Printer, error) {
	startTime := time.Now()

	if c.permissions != nil {
		if err := c.permissions.Check(ctx, settings); err != nil {
			return nil, fault.Classify(err)
		}
	}

	encoder, err := c.registry.Encoder(emulation)
	if err != nil {
		return nil, fault.Wrap(fault.KindUnsupportedModel, fault.ReasonNone, err, "unsupported emulation")
	}

	transport, err := c.newTransport(settings, c.defaults, c.logger)
	if err != nil {
		return nil, fault.Classify(err)
	}

	printer := NewRawPrinter(settings, transport, encoder, c.options, c.logger)
	if err := printer.Open(ctx); err != nil {
		c.logger.Warn("Failed to open printer",
			zap.String("identifier", settings.Identifier),
			zap.String("interface", string(settings.Interface)),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("Printer opened",
		zap.String("identifier", settings.Identifier),
		zap.String("interface", string(transport.Type())),
		zap.String("emulation", string(emulation)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return printer, nil
}
