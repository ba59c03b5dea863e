// internal/device/permissions.go
package device

import (
	"context"
	"net"
	"os"
	"strings"

	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
)

// PermissionChecker verifies the host can reach an interface before a
// connection attempt
type PermissionChecker interface {
	Check(ctx context.Context, settings model.ConnectionSettings) error
}

// HostPermissions checks the local machine for usable USB, Bluetooth and
// network facilities
type HostPermissions struct {
	USBRoot string
	// Interfaces lists network interfaces; defaults to net.Interfaces
	Interfaces func() ([]net.Interface, error)
}

// NewHostPermissions creates a checker for the running host
func NewHostPermissions() *HostPermissions {
	return &HostPermissions{
		USBRoot:    "/dev/bus/usb",
		Interfaces: net.Interfaces,
	}
}

func (h *HostPermissions) Check(ctx context.Context, settings model.ConnectionSettings) error {
	switch settings.Interface {
	case model.InterfaceUSB:
		if h.USBRoot == "" {
			return nil
		}
		if _, err := os.Stat(h.USBRoot); err != nil {
			return fault.Wrap(fault.KindIllegalDeviceState, fault.ReasonUsbUnavailable, err, "usb is not available on this host")
		}
	case model.InterfaceBluetooth:
		path := settings.Identifier
		if i := strings.LastIndex(path, "@"); i > 0 {
			path = path[:i]
		}
		if strings.HasPrefix(path, "/dev/") {
			if _, err := os.Stat(path); err != nil {
				return fault.Wrap(fault.KindIllegalDeviceState, fault.ReasonBluetoothUnavailable, err, "bluetooth port is not available")
			}
		}
	case model.InterfaceBluetoothLE:
		return fault.New(fault.KindIllegalDeviceState, fault.ReasonBluetoothUnavailable, "bluetooth low energy is not supported")
	case model.InterfaceLAN:
		if !isLoopback(settings.Identifier) && !h.networkUp() {
			return fault.New(fault.KindIllegalDeviceState, fault.ReasonNetworkUnavailable, "no network interface is up")
		}
	}
	return nil
}

func (h *HostPermissions) networkUp() bool {
	if h.Interfaces == nil {
		return true
	}
	ifaces, err := h.Interfaces()
	if err != nil {
		// unknown, let the dial decide
		return true
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}

func isLoopback(identifier string) bool {
	host := identifier
	if h, _, err := net.SplitHostPort(identifier); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
