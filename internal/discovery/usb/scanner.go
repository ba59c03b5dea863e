// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-bridge/internal/discovery"
	"printer-bridge/internal/model"
)

// Scanner enumerates USB printers through libusb
type Scanner struct {
	logger       *zap.Logger
	knownDevices *DeviceDatabase
	config       *Config
}

// Config for USB scanner
type Config struct {
	ScanTimeout   time.Duration `json:"scan_timeout"`
	EnableDebug   bool          `json:"enable_debug"`
	FilterByClass bool          `json:"filter_by_class"`
	ReadSerial    bool          `json:"read_serial"`
	ExtraDevices  []KnownDevice `json:"extra_devices"`
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{
			ScanTimeout:   10 * time.Second,
			FilterByClass: true,
			ReadSerial:    true,
		}
	}

	known := NewDeviceDatabase()
	for _, d := range config.ExtraDevices {
		known.Register(d)
	}

	logger = logger.With(zap.String("scanner", "usb"))
	logger.Debug("USB device database loaded",
		zap.Int("known_products", known.GetTotalProductCount()),
		zap.Int("configured_devices", len(config.ExtraDevices)),
	)

	return &Scanner{
		logger:       logger,
		knownDevices: known,
		config:       config,
	}
}

// Interface returns the interface type this scanner covers
func (s *Scanner) Interface() model.InterfaceType {
	return model.InterfaceUSB
}

// IsAvailable checks if libusb can enumerate the bus
func (s *Scanner) IsAvailable() bool {
	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	_, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return false
	})
	if err != nil {
		s.logger.Debug("USB subsystem not accessible", zap.Error(err))
		return false
	}
	return true
}

// Scan lists known vendor devices and devices exposing the printer class
func (s *Scanner) Scan(ctx context.Context) ([]model.FoundPrinter, error) {
	startTime := time.Now()
	s.logger.Info("Starting USB printer scan")

	if s.config.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ScanTimeout)
		defer cancel()
	}

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()
	if s.config.EnableDebug {
		usbCtx.Debug(3)
	}

	var mu sync.Mutex
	matched := make(map[string]model.FoundPrinter)
	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		found, ok := s.identify(desc)
		if !ok {
			return false
		}
		mu.Lock()
		matched[location(desc)] = found
		mu.Unlock()
		return s.config.ReadSerial
	})
	defer s.closeAllDevices(devices)
	if err != nil && len(devices) == 0 && len(matched) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	// opened devices can carry a serial number that tells identical models apart
	for _, device := range devices {
		if ctx.Err() != nil {
			break
		}
		found, ok := matched[location(device.Desc)]
		if !ok {
			continue
		}
		if serial := s.serialNumber(device); serial != "" {
			found.ConnectionSettings.Identifier += ":" + serial
			matched[location(device.Desc)] = found
		}
	}

	printers := make([]model.FoundPrinter, 0, len(matched))
	for _, found := range matched {
		printers = append(printers, found)
	}
	sortPrinters(printers)

	s.logger.Info("USB scan completed",
		zap.Int("printers_found", len(printers)),
		zap.Duration("scan_duration", time.Since(startTime)),
	)
	return printers, ctx.Err()
}

// identify decides whether a descriptor belongs to a receipt printer
func (s *Scanner) identify(desc *gousb.DeviceDesc) (model.FoundPrinter, bool) {
	if vendor := s.knownDevices.GetVendorInfo(desc.Vendor); vendor != nil {
		name := fmt.Sprintf("%s Unknown-%04X", vendor.Brand, uint16(desc.Product))
		if product := vendor.GetProductInfo(desc.Product); product != nil {
			name = product.Model
		}
		return newFoundPrinter(desc, discovery.EmulationForBrand(vendor.Brand), name), true
	}

	if s.config.FilterByClass && hasPrinterInterface(desc) {
		name := fmt.Sprintf("Generic-USB-%04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
		return newFoundPrinter(desc, model.EmulationEscPos, name), true
	}
	return model.FoundPrinter{}, false
}

func newFoundPrinter(desc *gousb.DeviceDesc, emulation model.Emulation, name string) model.FoundPrinter {
	return model.FoundPrinter{
		ConnectionSettings: model.ConnectionSettings{
			Identifier: Identifier(desc.Vendor, desc.Product),
			Interface:  model.InterfaceUSB,
		},
		Information: model.PrinterInformation{
			Emulation: string(emulation),
			Model:     name,
		},
	}
}

// Identifier formats a VID:PID pair the way the USB transport parses it
func Identifier(vendor, product gousb.ID) string {
	return fmt.Sprintf("%04x:%04x", uint16(vendor), uint16(product))
}

func hasPrinterInterface(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

func (s *Scanner) serialNumber(device *gousb.Device) string {
	serial, err := device.SerialNumber()
	if err != nil {
		s.logger.Debug("Failed to read serial number", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(serial)
}

func location(desc *gousb.DeviceDesc) string {
	return fmt.Sprintf("%d-%d", desc.Bus, desc.Address)
}

func (s *Scanner) closeAllDevices(devices []*gousb.Device) {
	for i, device := range devices {
		if device == nil {
			continue
		}
		if err := device.Close(); err != nil {
			s.logger.Warn("Failed to close USB device",
				zap.Int("device_index", i),
				zap.Error(err),
			)
		}
	}
}

func sortPrinters(printers []model.FoundPrinter) {
	sort.Slice(printers, func(i, j int) bool {
		return printers[i].ConnectionSettings.Identifier < printers[j].ConnectionSettings.Identifier
	})
}
