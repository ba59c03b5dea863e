// internal/protocol/connection.go
package protocol

import (
	"time"

	"printer-bridge/internal/model"
)

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port      string              `json:"port"`
	BaudRate  int                 `json:"baud_rate"`
	DataBits  int                 `json:"data_bits"`
	StopBits  int                 `json:"stop_bits"`
	Parity    string              `json:"parity"`
	Timeout   time.Duration       `json:"timeout"`
	Interface model.InterfaceType `json:"interface"`
}

// USBConfig represents USB connection configuration
type USBConfig struct {
	VendorID     string        `json:"vendor_id"`
	ProductID    string        `json:"product_id"`
	SerialNumber string        `json:"serial_number"`
	Timeout      time.Duration `json:"timeout"`
}

// TCPConfig represents TCP connection configuration
type TCPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	KeepAlive    bool          `json:"keep_alive"`
	Timeout      time.Duration `json:"timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// Defaults holds the per transport settings an identifier does not carry
type Defaults struct {
	TCP    TCPConfig
	Serial SerialConfig
	USB    USBConfig
}

// DefaultSettings returns the stock transport defaults
func DefaultSettings() Defaults {
	return Defaults{
		TCP: TCPConfig{
			Port:         9100, // Default printer port
			KeepAlive:    true,
			Timeout:      10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Serial: SerialConfig{
			BaudRate: 9600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
			Timeout:  5 * time.Second,
		},
		USB: USBConfig{
			Timeout: 5 * time.Second,
		},
	}
}
