// internal/fault/fault.go

// Package fault holds the closed set of device and communication faults
// reported by printer operations.
package fault

import (
	"fmt"
)

// Kind is the top level fault category
type Kind string

const (
	KindNoConnection          Kind = "no_connection"
	KindInvalidOperation      Kind = "invalid_operation"
	KindCommunication         Kind = "communication_error"
	KindInUse                 Kind = "in_use"
	KindNotFound              Kind = "not_found"
	KindArgumentFormatInvalid Kind = "argument_format_invalid"
	KindBadResponse           Kind = "bad_response"
	KindIllegalDeviceState    Kind = "illegal_device_state"
	KindUnprintable           Kind = "unprintable"
	KindUnsupportedModel      Kind = "unsupported_model"
	KindUnknown               Kind = "unknown"
)

// Reason refines IllegalDeviceState and Unprintable faults
type Reason string

const (
	ReasonNone Reason = ""

	// IllegalDeviceState
	ReasonNetworkUnavailable   Reason = "network_unavailable"
	ReasonBluetoothUnavailable Reason = "bluetooth_unavailable"
	ReasonUsbUnavailable       Reason = "usb_unavailable"

	// Unprintable
	ReasonDeviceHasError  Reason = "device_has_error"
	ReasonHoldingPaper    Reason = "holding_paper"
	ReasonPrintingTimeout Reason = "printing_timeout"

	ReasonOther Reason = "other"
)

// Fault is a classified device or communication failure
type Fault struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

// Sentinels for errors.Is. A sentinel without a reason matches every reason of its kind.
var (
	ErrNoConnection          = &Fault{Kind: KindNoConnection}
	ErrInvalidOperation      = &Fault{Kind: KindInvalidOperation}
	ErrCommunication         = &Fault{Kind: KindCommunication}
	ErrInUse                 = &Fault{Kind: KindInUse}
	ErrNotFound              = &Fault{Kind: KindNotFound}
	ErrArgumentFormatInvalid = &Fault{Kind: KindArgumentFormatInvalid}
	ErrBadResponse           = &Fault{Kind: KindBadResponse}
	ErrIllegalDeviceState    = &Fault{Kind: KindIllegalDeviceState}
	ErrUnprintable           = &Fault{Kind: KindUnprintable}
	ErrUnsupportedModel      = &Fault{Kind: KindUnsupportedModel}
	ErrUnknown               = &Fault{Kind: KindUnknown}

	ErrDeviceHasError  = &Fault{Kind: KindUnprintable, Reason: ReasonDeviceHasError}
	ErrPrintingTimeout = &Fault{Kind: KindUnprintable, Reason: ReasonPrintingTimeout}
)

// New creates a fault
func New(kind Kind, reason Reason, message string) *Fault {
	return &Fault{Kind: kind, Reason: reason, Message: message}
}

// Wrap creates a fault carrying its cause
func Wrap(kind Kind, reason Reason, err error, message string) *Fault {
	return &Fault{Kind: kind, Reason: reason, Message: message, Err: err}
}

// NoConnection is returned for operations attempted without a live handle
func NoConnection() *Fault {
	return New(KindNoConnection, ReasonNone, "not connected to any printer")
}

func (f *Fault) Error() string {
	label := string(f.Kind)
	if f.Reason != ReasonNone {
		label = fmt.Sprintf("%s(%s)", f.Kind, f.Reason)
	}
	switch {
	case f.Message != "" && f.Err != nil:
		return fmt.Sprintf("%s: %s: %v", label, f.Message, f.Err)
	case f.Message != "":
		return fmt.Sprintf("%s: %s", label, f.Message)
	case f.Err != nil:
		return fmt.Sprintf("%s: %v", label, f.Err)
	default:
		return label
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Is matches faults by kind, and by reason when the target names one
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	if t.Kind != f.Kind {
		return false
	}
	return t.Reason == ReasonNone || t.Reason == f.Reason
}

// IsStandingCondition reports whether the fault reflects a device condition
// observers should hear about, as opposed to a caller mistake.
func (f *Fault) IsStandingCondition() bool {
	switch f.Kind {
	case KindCommunication, KindUnprintable, KindIllegalDeviceState:
		return true
	}
	return false
}
