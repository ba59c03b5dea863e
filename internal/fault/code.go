// internal/fault/code.go
package fault

// Operation prefixes the error codes reported for each public call
type Operation string

const (
	OpSearch       Operation = "PRINTER_SEARCH"
	OpOpen         Operation = "PRINTER_OPEN"
	OpGetStatus    Operation = "PRINTER_GET_STATUS"
	OpPrint        Operation = "PRINTER_PRINT"
	OpOpenDrawer   Operation = "PRINTER_OPEN_DRAWER"
	OpShowText     Operation = "DISPLAY_SHOW_TEXT"
	OpClearDisplay Operation = "DISPLAY_CLEAR"
)

var kindSuffix = map[Kind]string{
	KindNoConnection:          "NO_PRINTER_CONNECTION",
	KindInvalidOperation:      "INVALID_OPERATION",
	KindCommunication:         "COMMUNICATION_ERROR",
	KindInUse:                 "PRINTER_IN_USE",
	KindNotFound:              "PRINTER_NOT_FOUND",
	KindArgumentFormatInvalid: "IDENTIFIER_FORMAT_INVALID",
	KindBadResponse:           "INVALID_RESPONSE_FROM_PRINTER",
	KindUnsupportedModel:      "UNSUPPORTED_MODEL",
	KindUnknown:               "UNKNOWN_ERROR",
}

var reasonSuffix = map[Reason]string{
	ReasonNetworkUnavailable:   "NETWORK_UNAVAILABLE",
	ReasonBluetoothUnavailable: "BLUETOOTH_UNAVAILABLE",
	ReasonUsbUnavailable:       "USB_UNAVAILABLE",
	ReasonDeviceHasError:       "DEVICE_ERROR",
	ReasonHoldingPaper:         "PRINTER_HOLDING_PAPER",
	ReasonPrintingTimeout:      "PRINTING_TIMEOUT",
}

// Code returns the operation scoped error code for f, e.g.
// PRINTER_PRINT_NO_PRINTER_CONNECTION.
func Code(op Operation, f *Fault) string {
	if f == nil {
		return ""
	}
	if op == OpSearch {
		if f.Reason == ReasonBluetoothUnavailable {
			return "PRINTER_SEARCH_ERROR_NO_BLUETOOTH"
		}
		return "PRINTER_SEARCH_ERROR"
	}
	return string(op) + "_" + suffix(f)
}

func suffix(f *Fault) string {
	switch f.Kind {
	case KindIllegalDeviceState:
		if s, ok := reasonSuffix[f.Reason]; ok {
			return s
		}
		return "ILLEGAL_DEVICE_STATE"
	case KindUnprintable:
		if s, ok := reasonSuffix[f.Reason]; ok {
			return s
		}
		return "INVALID_DEVICE_STATUS"
	}
	if s, ok := kindSuffix[f.Kind]; ok {
		return s
	}
	return "UNKNOWN_ERROR"
}
