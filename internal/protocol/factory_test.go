package protocol

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
)

func settings(identifier string, iface model.InterfaceType) model.ConnectionSettings {
	return model.ConnectionSettings{Identifier: identifier, Interface: iface}
}

func TestNewLAN(t *testing.T) {
	transport, err := New(settings("192.168.1.50", model.InterfaceLAN), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)

	tcp, ok := transport.(*TCPConnection)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.50:9100", tcp.Address())
	assert.Equal(t, model.InterfaceLAN, transport.Type())

	transport, err = New(settings("printer.local:9200", model.InterfaceLAN), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "printer.local:9200", transport.(*TCPConnection).Address())
}

func TestNewRejectsBadIdentifiers(t *testing.T) {
	tests := []model.ConnectionSettings{
		settings("", model.InterfaceLAN),
		settings("host:99999", model.InterfaceLAN),
		settings("not-usb", model.InterfaceUSB),
		settings("/dev/ttyUSB0@1234", model.InterfaceBluetooth),
	}

	for _, s := range tests {
		_, err := New(s, DefaultSettings(), zap.NewNop())
		assert.True(t, errors.Is(err, fault.ErrArgumentFormatInvalid), "identifier %q", s.Identifier)
	}
}

func TestNewBLEUnavailable(t *testing.T) {
	_, err := New(settings("AA:BB", model.InterfaceBluetoothLE), DefaultSettings(), zap.NewNop())

	var f *fault.Fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, fault.KindIllegalDeviceState, f.Kind)
	assert.Equal(t, fault.ReasonBluetoothUnavailable, f.Reason)
}

func TestNewUSBAndSerial(t *testing.T) {
	transport, err := New(settings("04b8:0e15:ABC123", model.InterfaceUSB), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	usb := transport.(*USBConnection)
	assert.Equal(t, "04b8", usb.config.VendorID)
	assert.Equal(t, "0e15", usb.config.ProductID)
	assert.Equal(t, "ABC123", usb.config.SerialNumber)

	transport, err = New(settings("/dev/rfcomm0@115200", model.InterfaceBluetooth), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	port := transport.(*SerialConnection)
	assert.Equal(t, "/dev/rfcomm0", port.config.Port)
	assert.Equal(t, 115200, port.config.BaudRate)
	assert.Equal(t, model.InterfaceBluetooth, transport.Type())
}

func TestInferInterface(t *testing.T) {
	assert.Equal(t, model.InterfaceUSB, InferInterface("0x04B8:0x0202"))
	assert.Equal(t, model.InterfaceUnknown, InferInterface("/dev/ttyS0"))
	assert.Equal(t, model.InterfaceUnknown, InferInterface("COM5@19200"))
	assert.Equal(t, model.InterfaceLAN, InferInterface("10.0.0.7:9100"))

	transport, err := New(settings("COM3", model.InterfaceUnknown), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SerialConnection{}, transport)
}

func TestParseHexID(t *testing.T) {
	id, err := ParseHexID("0x04B8")
	require.NoError(t, err)
	assert.Equal(t, "04b8", id.String())

	_, err = ParseHexID("zzzz")
	assert.Error(t, err)
}

func TestTCPConnectionRoundTrip(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
		conn.Write([]byte{0x12, 0x12})
	}()

	transport, err := New(settings(listener.Addr().String(), model.InterfaceLAN), DefaultSettings(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, transport.Open(ctx))
	assert.True(t, transport.IsOpen())
	require.NoError(t, transport.Write(ctx, []byte("hello")))
	assert.Equal(t, []byte("hello"), <-received)

	reply, err := ReadFull(ctx, transport, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x12}, reply)

	stats := transport.Stats()
	assert.EqualValues(t, 5, stats.BytesWritten)
	assert.EqualValues(t, 2, stats.BytesRead)

	require.NoError(t, transport.Close())
	assert.False(t, transport.IsOpen())
	assert.NoError(t, transport.Close())
}
