// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
)

var usbIdentifier = regexp.MustCompile(`^(?:0x)?([0-9a-fA-F]{4}):(?:0x)?([0-9a-fA-F]{4})(?::(.+))?$`)

var validBaudRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// New creates the transport for a printer identifier. Unknown interfaces are
// inferred from the identifier form: VID:PID is USB, a device path is serial,
// anything else is a LAN host.
func New(settings model.ConnectionSettings, defaults Defaults, logger *zap.Logger) (Transport, error) {
	identifier := strings.TrimSpace(settings.Identifier)
	if identifier == "" {
		return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone, "identifier is required")
	}

	iface := settings.Interface
	if iface == model.InterfaceUnknown || iface == "" {
		iface = InferInterface(identifier)
	}

	switch iface {
	case model.InterfaceLAN:
		return createTCPTransport(identifier, defaults.TCP, logger)
	case model.InterfaceUSB:
		return createUSBTransport(identifier, defaults.USB, logger)
	case model.InterfaceBluetooth, model.InterfaceUnknown:
		return createSerialTransport(identifier, iface, defaults.Serial, logger)
	case model.InterfaceBluetoothLE:
		return nil, fault.New(fault.KindIllegalDeviceState, fault.ReasonBluetoothUnavailable,
			"bluetooth low energy printers are not supported")
	default:
		return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone,
			fmt.Sprintf("unsupported interface: %s", iface))
	}
}

// InferInterface guesses the interface from the identifier format
func InferInterface(identifier string) model.InterfaceType {
	switch {
	case usbIdentifier.MatchString(identifier):
		return model.InterfaceUSB
	case isDevicePath(identifier):
		return model.InterfaceUnknown
	default:
		return model.InterfaceLAN
	}
}

func isDevicePath(identifier string) bool {
	path := identifier
	if i := strings.LastIndex(path, "@"); i > 0 {
		path = path[:i]
	}
	upper := strings.ToUpper(path)
	return strings.HasPrefix(path, "/dev/") ||
		strings.HasPrefix(upper, "COM") ||
		strings.HasPrefix(path, `\\.\`)
}

// createTCPTransport parses host[:port]
func createTCPTransport(identifier string, defaults TCPConfig, logger *zap.Logger) (Transport, error) {
	tcpConfig := defaults
	if tcpConfig.Port == 0 {
		tcpConfig.Port = 9100
	}

	host, port, err := net.SplitHostPort(identifier)
	if err != nil {
		// no port, or a bare IPv6 address
		host = strings.Trim(identifier, "[]")
	} else {
		p, convErr := strconv.Atoi(port)
		if convErr != nil || p < 1 || p > 65535 {
			return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone,
				fmt.Sprintf("invalid port number: %s", port))
		}
		tcpConfig.Port = p
	}
	if host == "" || strings.ContainsAny(host, " /") {
		return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone,
			fmt.Sprintf("invalid host: %q", identifier))
	}
	tcpConfig.Host = host

	logger.Info("Creating TCP transport",
		zap.String("host", tcpConfig.Host),
		zap.Int("port", tcpConfig.Port),
	)

	return NewTCPConnection(&tcpConfig, logger), nil
}

// createUSBTransport parses VVVV:PPPP[:serial]
func createUSBTransport(identifier string, defaults USBConfig, logger *zap.Logger) (Transport, error) {
	m := usbIdentifier.FindStringSubmatch(identifier)
	if m == nil {
		return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone,
			fmt.Sprintf("usb identifier must be VVVV:PPPP[:serial], got %q", identifier))
	}

	usbConfig := defaults
	usbConfig.VendorID = strings.ToLower(m[1])
	usbConfig.ProductID = strings.ToLower(m[2])
	usbConfig.SerialNumber = m[3]

	logger.Info("Creating USB transport",
		zap.String("vendor_id", usbConfig.VendorID),
		zap.String("product_id", usbConfig.ProductID),
		zap.String("serial_number", usbConfig.SerialNumber),
	)

	return NewUSBConnection(&usbConfig, logger), nil
}

// createSerialTransport parses path[@baud]
func createSerialTransport(identifier string, iface model.InterfaceType, defaults SerialConfig, logger *zap.Logger) (Transport, error) {
	serialConfig := defaults
	serialConfig.Interface = iface
	if serialConfig.BaudRate == 0 {
		serialConfig.BaudRate = 9600
	}
	if serialConfig.DataBits == 0 {
		serialConfig.DataBits = 8
	}

	port := identifier
	if i := strings.LastIndex(identifier, "@"); i > 0 {
		port = identifier[:i]
		rate, err := strconv.Atoi(identifier[i+1:])
		if err != nil || !validBaudRate(rate) {
			return nil, fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone,
				fmt.Sprintf("invalid baud rate: %s", identifier[i+1:]))
		}
		serialConfig.BaudRate = rate
	}
	serialConfig.Port = port

	logger.Info("Creating serial transport",
		zap.String("port", serialConfig.Port),
		zap.Int("baud_rate", serialConfig.BaudRate),
		zap.String("interface", string(iface)),
	)

	return NewSerialConnection(&serialConfig, logger), nil
}

func validBaudRate(rate int) bool {
	for _, valid := range validBaudRates {
		if rate == valid {
			return true
		}
	}
	return false
}
