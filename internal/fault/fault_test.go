package fault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"

	"printer-bridge/internal/driver"
)

func TestFaultIsMatchesKindAndReason(t *testing.T) {
	f := New(KindUnprintable, ReasonDeviceHasError, "cover open")

	assert.True(t, errors.Is(f, ErrUnprintable))
	assert.True(t, errors.Is(f, ErrDeviceHasError))
	assert.False(t, errors.Is(f, ErrPrintingTimeout))
	assert.False(t, errors.Is(f, ErrCommunication))

	wrapped := fmt.Errorf("print failed: %w", f)
	assert.True(t, errors.Is(wrapped, ErrDeviceHasError))
}

func TestFaultError(t *testing.T) {
	assert.Equal(t, "no_connection: not connected to any printer", NoConnection().Error())
	assert.Equal(t, "unprintable(printing_timeout): write stalled: EOF",
		Wrap(KindUnprintable, ReasonPrintingTimeout, io.EOF, "write stalled").Error())
	assert.Equal(t, "unknown", (&Fault{Kind: KindUnknown}).Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		reason Reason
	}{
		{"bad status", fmt.Errorf("read: %w", driver.ErrBadStatus), KindBadResponse, ReasonNone},
		{"unsupported op", driver.ErrUnsupportedOp, KindInvalidOperation, ReasonNone},
		{"invalid payload", fmt.Errorf("encode: %w", driver.ErrInvalidPayload), KindArgumentFormatInvalid, ReasonNone},
		{"deadline", context.DeadlineExceeded, KindCommunication, ReasonNone},
		{"eof", io.EOF, KindCommunication, ReasonNone},
		{"usb busy", gousb.ErrorBusy, KindInUse, ReasonNone},
		{"usb gone", gousb.ErrorNoDevice, KindNotFound, ReasonNone},
		{"usb access", gousb.ErrorAccess, KindIllegalDeviceState, ReasonUsbUnavailable},
		{"usb io", gousb.ErrorIO, KindCommunication, ReasonNone},
		{"usb transfer", gousb.TransferStall, KindCommunication, ReasonNone},
		{"dns not found", &net.DNSError{Err: "no such host", Name: "printer", IsNotFound: true}, KindNotFound, ReasonNone},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, KindNotFound, ReasonNone},
		{"unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, KindIllegalDeviceState, ReasonNetworkUnavailable},
		{"other", errors.New("boom"), KindUnknown, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.reason, f.Reason)
			assert.True(t, errors.Is(f, tt.err) || f.Err == tt.err)
		})
	}
}

func TestClassifyPassesFaultsThrough(t *testing.T) {
	original := New(KindInUse, ReasonNone, "")
	assert.Same(t, original, Classify(fmt.Errorf("open: %w", original)))
	assert.Nil(t, Classify(nil))
}

func TestCode(t *testing.T) {
	tests := []struct {
		op       Operation
		fault    *Fault
		expected string
	}{
		{OpPrint, NoConnection(), "PRINTER_PRINT_NO_PRINTER_CONNECTION"},
		{OpGetStatus, New(KindBadResponse, ReasonNone, ""), "PRINTER_GET_STATUS_INVALID_RESPONSE_FROM_PRINTER"},
		{OpOpen, New(KindInUse, ReasonNone, ""), "PRINTER_OPEN_PRINTER_IN_USE"},
		{OpOpen, New(KindArgumentFormatInvalid, ReasonNone, ""), "PRINTER_OPEN_IDENTIFIER_FORMAT_INVALID"},
		{OpOpen, New(KindIllegalDeviceState, ReasonBluetoothUnavailable, ""), "PRINTER_OPEN_BLUETOOTH_UNAVAILABLE"},
		{OpOpen, New(KindIllegalDeviceState, ReasonOther, ""), "PRINTER_OPEN_ILLEGAL_DEVICE_STATE"},
		{OpPrint, New(KindUnprintable, ReasonDeviceHasError, ""), "PRINTER_PRINT_DEVICE_ERROR"},
		{OpPrint, New(KindUnprintable, ReasonHoldingPaper, ""), "PRINTER_PRINT_PRINTER_HOLDING_PAPER"},
		{OpPrint, New(KindUnprintable, ReasonOther, ""), "PRINTER_PRINT_INVALID_DEVICE_STATUS"},
		{OpOpenDrawer, New(KindUnknown, ReasonNone, ""), "PRINTER_OPEN_DRAWER_UNKNOWN_ERROR"},
		{OpClearDisplay, New(KindCommunication, ReasonNone, ""), "DISPLAY_CLEAR_COMMUNICATION_ERROR"},
		{OpSearch, New(KindIllegalDeviceState, ReasonBluetoothUnavailable, ""), "PRINTER_SEARCH_ERROR_NO_BLUETOOTH"},
		{OpSearch, New(KindUnknown, ReasonNone, ""), "PRINTER_SEARCH_ERROR"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Code(tt.op, tt.fault))
	}
	assert.Empty(t, Code(OpPrint, nil))
}

func TestIsStandingCondition(t *testing.T) {
	assert.True(t, New(KindCommunication, ReasonNone, "").IsStandingCondition())
	assert.True(t, New(KindUnprintable, ReasonDeviceHasError, "").IsStandingCondition())
	assert.False(t, NoConnection().IsStandingCondition())
	assert.False(t, New(KindArgumentFormatInvalid, ReasonNone, "").IsStandingCondition())
}
