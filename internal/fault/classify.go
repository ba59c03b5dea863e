// internal/fault/classify.go
package fault

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/google/gousb"
	"go.bug.st/serial"

	"printer-bridge/internal/driver"
)

// Classify maps an error raised by a transport, encoder or device onto the
// closed fault set. Faults pass through unchanged; nil stays nil.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		return f
	}

	switch {
	case errors.Is(err, driver.ErrBadStatus):
		return Wrap(KindBadResponse, ReasonNone, err, "invalid response from printer")
	case errors.Is(err, driver.ErrUnsupportedOp):
		return Wrap(KindInvalidOperation, ReasonNone, err, "operation not supported by printer")
	case errors.Is(err, driver.ErrInvalidPayload):
		return Wrap(KindArgumentFormatInvalid, ReasonNone, err, "operation payload not accepted by printer")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return Wrap(KindCommunication, ReasonNone, err, "device did not respond in time")
	case errors.Is(err, context.Canceled):
		return Wrap(KindCommunication, ReasonNone, err, "operation cancelled")
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrClosedPipe):
		return Wrap(KindCommunication, ReasonNone, err, "connection closed by device")
	}

	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return classifySerial(portErr)
	}

	var usbErr gousb.Error
	if errors.As(err, &usbErr) {
		return classifyUSB(usbErr)
	}

	var transfer gousb.TransferStatus
	if errors.As(err, &transfer) {
		if transfer == gousb.TransferNoDevice {
			return Wrap(KindCommunication, ReasonNone, err, "usb device disconnected")
		}
		return Wrap(KindCommunication, ReasonNone, err, "usb transfer failed")
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return Wrap(KindNotFound, ReasonNone, err, "printer host not found")
		}
		return Wrap(KindIllegalDeviceState, ReasonNetworkUnavailable, err, "name resolution failed")
	}

	switch {
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return Wrap(KindIllegalDeviceState, ReasonNetworkUnavailable, err, "network unavailable")
	case errors.Is(err, syscall.ECONNREFUSED):
		return Wrap(KindNotFound, ReasonNone, err, "printer refused connection")
	case errors.Is(err, syscall.EBUSY):
		return Wrap(KindInUse, ReasonNone, err, "printer in use")
	case errors.Is(err, os.ErrNotExist):
		return Wrap(KindNotFound, ReasonNone, err, "printer not found")
	case errors.Is(err, os.ErrPermission):
		return Wrap(KindIllegalDeviceState, ReasonOther, err, "permission denied")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Wrap(KindCommunication, ReasonNone, err, "network communication failed")
	}

	return Wrap(KindUnknown, ReasonNone, err, "")
}

func classifySerial(err *serial.PortError) *Fault {
	switch err.Code() {
	case serial.PortBusy:
		return Wrap(KindInUse, ReasonNone, err, "serial port in use")
	case serial.PortNotFound:
		return Wrap(KindNotFound, ReasonNone, err, "serial port not found")
	case serial.InvalidSerialPort, serial.InvalidSpeed, serial.InvalidDataBits,
		serial.InvalidParity, serial.InvalidStopBits, serial.InvalidTimeoutValue:
		return Wrap(KindArgumentFormatInvalid, ReasonNone, err, "invalid serial settings")
	case serial.PermissionDenied:
		return Wrap(KindIllegalDeviceState, ReasonBluetoothUnavailable, err, "serial port permission denied")
	case serial.FunctionNotImplemented:
		return Wrap(KindInvalidOperation, ReasonNone, err, "")
	default:
		return Wrap(KindCommunication, ReasonNone, err, "serial communication failed")
	}
}

func classifyUSB(err gousb.Error) *Fault {
	switch err {
	case gousb.ErrorBusy:
		return Wrap(KindInUse, ReasonNone, err, "usb device in use")
	case gousb.ErrorNoDevice, gousb.ErrorNotFound:
		return Wrap(KindNotFound, ReasonNone, err, "usb device not found")
	case gousb.ErrorAccess:
		return Wrap(KindIllegalDeviceState, ReasonUsbUnavailable, err, "usb access denied")
	case gousb.ErrorInvalidParam:
		return Wrap(KindArgumentFormatInvalid, ReasonNone, err, "")
	case gousb.ErrorNotSupported:
		return Wrap(KindUnsupportedModel, ReasonNone, err, "")
	default:
		return Wrap(KindCommunication, ReasonNone, err, "usb communication failed")
	}
}
