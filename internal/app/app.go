// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/database"
	"printer-bridge/internal/device"
	"printer-bridge/internal/discovery"
	"printer-bridge/internal/discovery/lan"
	"printer-bridge/internal/discovery/serial"
	"printer-bridge/internal/discovery/usb"
	"printer-bridge/internal/dispatch"
	"printer-bridge/internal/document"
	"printer-bridge/internal/driver"
	"printer-bridge/internal/event"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
	"printer-bridge/internal/monitor"
	"printer-bridge/internal/repository"
	"printer-bridge/internal/resolve"
	"printer-bridge/internal/service"
	"printer-bridge/internal/session"
)

// Components holds the wired printer stack shared by the server and the CLI
type Components struct {
	Config     *config.Config
	Metrics    *metrics.Registry
	Drivers    *driver.Registry
	Session    *session.Session
	Bus        *event.Bus
	Listeners  *event.Registry
	Emitter    *event.Emitter
	Dispatcher *dispatch.Dispatcher
	Discovery  *discovery.Manager
	Database   *database.DB
	Jobs       repository.JobRepository
	Printer    *service.PrinterService

	logger *zap.Logger
}

// New wires every component. reg may be nil, in which case nothing is
// measured. The journal is opened and migrated only when enabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Components, error) {
	c := &Components{
		Config: cfg,
		logger: logger,
	}
	if reg != nil {
		c.Metrics = metrics.NewRegistry(reg)
	}

	if err := c.initializeJournal(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	c.initializeDevice()
	c.initializeEvents()
	c.initializeDiscovery()

	images := document.NewSourceLoader(
		cfg.Printer.ImageFetchTimeout,
		cfg.Printer.ImageMaxBytes,
		cfg.Printer.AllowLocalImages,
	)

	c.Dispatcher = dispatch.New(c.Session, c.Emitter, c.Metrics, dispatch.Options{
		DotsPerMM: decimal.NewFromInt(int64(cfg.Printer.DotsPerMM)),
		Encoding:  resolve.Encoding(cfg.Printer.Encoding),
		Images:    images,
	}, logger)

	c.Printer = service.NewPrinterService(service.Dependencies{
		Session:    c.Session,
		Dispatcher: c.Dispatcher,
		Searcher:   c.Discovery,
		Listeners:  c.Listeners,
		Jobs:       c.Jobs,
		Metrics:    c.Metrics,
		Images:     images,
	}, service.Options{
		DefaultCharset: cfg.Printer.DefaultCharset,
	}, logger)

	logger.Info("Printer stack initialized",
		zap.String("emulation", string(c.Session.Emulation())),
		zap.Bool("journal_enabled", c.Jobs != nil),
		zap.Bool("metrics_enabled", c.Metrics != nil),
	)
	return c, nil
}

func (c *Components) initializeJournal(ctx context.Context) error {
	if !c.Config.Journal.Enabled {
		return nil
	}

	db, err := database.NewConnection(ctx, c.Config.GetDatabaseDSN(), &c.Config.Journal, c.logger)
	if err != nil {
		return err
	}
	if err := database.NewMigrator(db, c.logger).Up(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.Database = db
	c.Jobs = repository.NewJobRepository(db, c.logger)
	return nil
}

func (c *Components) initializeDevice() {
	cfg := c.Config

	c.Drivers = driver.NewRegistry(c.logger)
	connector := device.NewTransportConnector(
		c.Drivers,
		cfg.TransportDefaults(),
		device.NewHostPermissions(),
		device.Options{
			CheckStatus:   cfg.Printer.CheckStatusBeforePrint,
			StatusTimeout: cfg.Printer.StatusTimeout,
			PrintTimeout:  cfg.Printer.WriteTimeout,
		},
		c.logger,
	)
	c.Session = session.New(connector, resolve.Emulation(cfg.Printer.Emulation), cfg.Printer.OpenTimeout, c.logger)
}

func (c *Components) initializeEvents() {
	var onChange func(int64)
	if c.Metrics != nil {
		onChange = c.Metrics.SetListeners
	}

	c.Bus = event.NewBus(c.Config.Events.BufferSize, c.logger)
	c.Listeners = event.NewRegistry(onChange)
	c.Emitter = event.NewEmitter(c.Bus, c.Listeners, c.Metrics, c.logger)
}

func (c *Components) initializeDiscovery() {
	cfg := c.Config.Discovery
	emulation := resolve.Emulation(c.Config.Printer.Emulation)

	c.Discovery = discovery.NewManager(cfg.Timeout, c.logger)
	for _, name := range cfg.Interfaces {
		switch model.InterfaceType(name) {
		case model.InterfaceUSB:
			c.Discovery.Register(usb.NewScanner(c.logger, &usb.Config{
				ScanTimeout:   cfg.Timeout,
				EnableDebug:   c.Config.IsDebugEnabled(),
				FilterByClass: true,
				ReadSerial:    true,
				ExtraDevices:  knownUSBDevices(cfg.USBDevices),
			}))
		case model.InterfaceBluetooth:
			c.Discovery.Register(serial.NewScanner(c.logger, &serial.Config{
				Emulation: emulation,
			}))
		case model.InterfaceLAN:
			c.Discovery.Register(lan.NewScanner(c.logger, &lan.Config{
				Hosts:       cfg.LANHosts,
				CIDR:        cfg.LANCIDR,
				Port:        cfg.LANPort,
				ConnTimeout: c.Config.Transport.TCP.ConnectTimeout,
				Concurrency: cfg.Concurrency,
				Emulation:   emulation,
			}))
		default:
			c.logger.Warn("Unknown discovery interface ignored", zap.String("interface", name))
		}
	}
}

// StartBackground runs the event bus and the enabled background loops until
// ctx is done
func (c *Components) StartBackground(ctx context.Context) {
	go c.Bus.Start(ctx)

	if c.Config.Monitor.Enabled {
		mon := monitor.New(c.Config.Monitor, c.Config.Printer.StatusTimeout, c.Dispatcher, c.Emitter, c.Metrics, c.logger)
		go mon.Run(ctx)
	}

	if c.Config.Events.MQTT.Enabled {
		relay := event.NewRelay(c.Config.Events.MQTT, c.Bus, c.Listeners, c.logger)
		go func() {
			if err := relay.Connect(ctx); err != nil {
				c.logger.Error("MQTT relay disabled", zap.Error(err))
				return
			}
			relay.Run(ctx)
		}()
	}

	if c.Jobs != nil && c.Config.Journal.Retention > 0 {
		go c.runRetention(ctx)
	}
}

// runRetention deletes journal rows older than the configured retention
func (c *Components) runRetention(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	c.logger.Info("Journal cleanup started", zap.Duration("retention", c.Config.Journal.Retention))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			deleted, err := c.Printer.PurgeJobs(cleanupCtx, c.Config.Journal.Retention)
			cancel()
			if err != nil {
				c.logger.Error("Failed to cleanup old print jobs", zap.Error(err))
			} else if deleted > 0 {
				c.logger.Info("Cleaned up old print jobs", zap.Int64("deleted", deleted))
			}
		}
	}
}

// Close disconnects the printer and closes the journal
func (c *Components) Close(ctx context.Context) {
	if err := c.Printer.Disconnect(ctx); err != nil {
		c.logger.Error("Printer disconnect error", zap.Error(err))
	}

	if c.Database != nil {
		if err := c.Database.Close(); err != nil {
			c.logger.Error("Database close error", zap.Error(err))
		} else {
			c.logger.Info("Database connection closed")
		}
	}
}

func knownUSBDevices(devices []config.USBDeviceConfig) []usb.KnownDevice {
	known := make([]usb.KnownDevice, 0, len(devices))
	for _, d := range devices {
		known = append(known, usb.KnownDevice{
			VendorID:  gousb.ID(d.VendorID),
			ProductID: gousb.ID(d.ProductID),
			Brand:     model.Brand(strings.ToUpper(d.Brand)),
			Vendor:    d.Vendor,
			Model:     d.Model,
		})
	}
	return known
}
