// internal/model/device.go
package model

import (
	"fmt"
	"strings"
)

// InterfaceType represents how the printer is reached
type InterfaceType string

const (
	InterfaceBluetooth   InterfaceType = "bluetooth"
	InterfaceBluetoothLE InterfaceType = "BLE"
	InterfaceLAN         InterfaceType = "lan"
	InterfaceUSB         InterfaceType = "usb"
	InterfaceUnknown     InterfaceType = "unknown"
)

// AllInterfaces lists every interface a search may be filtered on
var AllInterfaces = []InterfaceType{
	InterfaceLAN,
	InterfaceUSB,
	InterfaceBluetooth,
	InterfaceBluetoothLE,
}

// ParseInterfaceType maps a caller supplied interface string.
// BLE is matched case-sensitively, everything else case-insensitively.
func ParseInterfaceType(value string) InterfaceType {
	if value == string(InterfaceBluetoothLE) {
		return InterfaceBluetoothLE
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bluetooth":
		return InterfaceBluetooth
	case "lan":
		return InterfaceLAN
	case "usb":
		return InterfaceUSB
	default:
		return InterfaceUnknown
	}
}

// Brand represents a printer manufacturer
type Brand string

const (
	BrandStar    Brand = "STAR"
	BrandEpson   Brand = "EPSON"
	BrandCitizen Brand = "CITIZEN"
	BrandBixolon Brand = "BIXOLON"
	BrandGeneric Brand = "GENERIC"
)

// Emulation names the command language a printer speaks
type Emulation string

const (
	EmulationEscPos   Emulation = "escpos"
	EmulationStarLine Emulation = "starline"
)

// ConnectionSettings identifies a single printer
type ConnectionSettings struct {
	Identifier string        `json:"identifier"`
	Interface  InterfaceType `json:"interface"`
}

// String returns a log friendly representation
func (cs ConnectionSettings) String() string {
	return fmt.Sprintf("%s:%s", cs.Interface, cs.Identifier)
}

// PrinterInformation describes a discovered printer
type PrinterInformation struct {
	Emulation string `json:"emulation"`
	Model     string `json:"model"`
}

// FoundPrinter is a single search result
type FoundPrinter struct {
	ConnectionSettings ConnectionSettings `json:"connection-settings"`
	Information        PrinterInformation `json:"information"`
}

// Status is a snapshot of the printer condition
type Status struct {
	HasError              bool `json:"hasError"`
	CoverOpen             bool `json:"coverOpen"`
	DrawerOpenCloseSignal bool `json:"drawerOpenCloseSignal"`
	PaperEmpty            bool `json:"paperEmpty"`
	PaperNearEmpty        bool `json:"paperNearEmpty"`
	CutterError           bool `json:"cutterError"`
	PaperSeparatorError   bool `json:"paperSeparatorError"`
	PaperJamError         bool `json:"paperJamError"`
	RollPositionError     bool `json:"rollPositionError"`
	PaperPresent          bool `json:"paperPresent"`
	DrawerOpenError       bool `json:"drawerOpenError"`
	PrintUnitOpen         bool `json:"printUnitOpen"`
	// DetectedPaperWidth is the paper width in millimetres when the printer reports it
	DetectedPaperWidth *int `json:"detectedPaperWidth"`
}

// Printable reports whether a job may be sent without an immediate fault
func (s *Status) Printable() bool {
	return !s.HasError && !s.CoverOpen && !s.PaperEmpty
}
