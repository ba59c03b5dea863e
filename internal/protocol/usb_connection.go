// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// USBConnection implements Transport over the bulk endpoints of a USB
// printer class interface
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	cfg      *gousb.Config
	intf     *gousb.Interface
	outEndpt *gousb.OutEndpoint
	inEndpt  *gousb.InEndpoint
	logger   *zap.Logger
	mutex    sync.Mutex
	isOpen   bool
	stats    Stats
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) *USBConnection {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open opens the device and claims its printer interface
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	uc.logger.Info("Opening USB connection")

	vendorID, err := ParseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := ParseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	uc.ctx = gousb.NewContext()

	device, err := uc.findAndOpenDevice(vendorID, productID)
	if err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to find USB device: %w", err)
	}
	uc.device = device

	if runtime.GOOS == "linux" {
		device.SetAutoDetach(true)
	}

	if err := uc.claimPrinterInterface(); err != nil {
		uc.releaseLocked()
		return err
	}

	uc.isOpen = true
	uc.stats.IsConnected = true
	uc.stats.LastActivity = time.Now()

	uc.logger.Info("USB connection opened successfully")
	return nil
}

func (uc *USBConnection) claimPrinterInterface() error {
	cfgNum, err := uc.device.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("failed to get active config: %w", err)
	}
	cfg, err := uc.device.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	uc.cfg = cfg

	ifaceNum := -1
	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.Class == gousb.ClassPrinter {
				ifaceNum = iface.Number
				break
			}
		}
		if ifaceNum >= 0 {
			break
		}
	}
	if ifaceNum < 0 {
		// vendor specific class on some receipt printers
		ifaceNum = 0
	}

	intf, err := cfg.Interface(ifaceNum, 0)
	if err != nil {
		return fmt.Errorf("failed to claim interface: %w", err)
	}
	uc.intf = intf

	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionOut && uc.outEndpt == nil {
			if out, err := intf.OutEndpoint(ep.Number); err == nil {
				uc.outEndpt = out
			}
		}
		if ep.Direction == gousb.EndpointDirectionIn && uc.inEndpt == nil {
			if in, err := intf.InEndpoint(ep.Number); err == nil {
				uc.inEndpt = in
			}
		}
	}

	if uc.outEndpt == nil {
		return errors.New("cannot find output endpoint from printer")
	}
	if uc.inEndpt == nil {
		uc.logger.Warn("No in endpoint found, status reads unavailable")
	}
	return nil
}

// Close closes the USB connection
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	uc.releaseLocked()
	uc.logger.Info("USB connection closed successfully")
	return nil
}

func (uc *USBConnection) releaseLocked() {
	if uc.intf != nil {
		uc.intf.Close()
		uc.intf = nil
	}
	if uc.cfg != nil {
		uc.cfg.Close()
		uc.cfg = nil
	}
	if uc.device != nil {
		uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.outEndpt = nil
	uc.inEndpt = nil
	uc.isOpen = false
	uc.stats.IsConnected = false
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.isOpen && uc.device != nil && uc.outEndpt != nil
}

// Write writes data to the bulk out endpoint
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return fmt.Errorf("USB connection not open")
	}

	writeCtx, cancel := withTimeout(ctx, uc.config.Timeout)
	defer cancel()

	startTime := time.Now()
	n, err := uc.outEndpt.WriteContext(writeCtx, data)
	if err != nil {
		uc.stats.ErrorCount++
		uc.logger.Error("USB write failed", zap.Error(err), zap.Int("written", n))
		if errors.Is(err, gousb.ErrorNoDevice) || errors.Is(err, gousb.TransferNoDevice) {
			uc.releaseLocked()
		}
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.recordWrite(len(data), time.Since(startTime))
	uc.logger.Debug("USB write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read reads up to maxBytes from the bulk in endpoint
func (uc *USBConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.inEndpt == nil {
		return nil, fmt.Errorf("USB connection not open or no in endpoint")
	}

	readCtx, cancel := withTimeout(ctx, uc.config.Timeout)
	defer cancel()

	// bulk reads must cover a full packet
	size := maxBytes
	if packet := uc.inEndpt.Desc.MaxPacketSize; packet > size {
		size = packet
	}
	buffer := make([]byte, size)
	n, err := uc.inEndpt.ReadContext(readCtx, buffer)
	if err != nil {
		uc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from USB device: %w", err)
	}
	if n > maxBytes {
		n = maxBytes
	}

	uc.stats.recordRead(n)
	return buffer[:n], nil
}

// Type returns the interface type
func (uc *USBConnection) Type() model.InterfaceType {
	return model.InterfaceUSB
}

// Stats returns a snapshot of the connection statistics
func (uc *USBConnection) Stats() Stats {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.stats
}

// ParseHexID parses hex ID string (0x1234 or 1234)
func ParseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.ToLower(hexStr), "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}

// findAndOpenDevice opens the first device matching VID/PID and, when set, the serial number
func (uc *USBConnection) findAndOpenDevice(vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := uc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var chosen *gousb.Device
	for _, device := range devices {
		if chosen == nil && uc.matchesSerial(device) {
			chosen = device
			continue
		}
		device.Close()
	}

	if chosen == nil {
		return nil, fmt.Errorf("USB device not found (VID: %s, PID: %s): %w", vendorID, productID, gousb.ErrorNotFound)
	}
	return chosen, nil
}

func (uc *USBConnection) matchesSerial(device *gousb.Device) bool {
	if uc.config.SerialNumber == "" {
		return true
	}
	serial, err := device.SerialNumber()
	if err != nil {
		uc.logger.Warn("Failed to read serial number", zap.Error(err))
		return false
	}
	return serial == uc.config.SerialNumber
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
