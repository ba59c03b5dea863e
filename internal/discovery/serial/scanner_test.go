// internal/discovery/serial/scanner_test.go
package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

func newTestScanner(ports []*enumerator.PortDetails, err error) *Scanner {
	s := NewScanner(zap.NewNop(), &Config{PortPatterns: []string{`^/dev/rfcomm[0-9]+$`}})
	return s.WithPortLister(func() ([]*enumerator.PortDetails, error) {
		return ports, err
	})
}

func TestScanListsBluetoothPorts(t *testing.T) {
	s := newTestScanner([]*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/rfcomm0"},
		{Name: "/dev/rfcomm1", Product: "TM-P20"},
		{Name: "/dev/rfcomm2", IsUSB: true},
	}, nil)

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.FoundPrinter{
		{
			ConnectionSettings: model.ConnectionSettings{Identifier: "/dev/rfcomm0", Interface: model.InterfaceBluetooth},
			Information:        model.PrinterInformation{Emulation: "escpos", Model: "rfcomm0"},
		},
		{
			ConnectionSettings: model.ConnectionSettings{Identifier: "/dev/rfcomm1", Interface: model.InterfaceBluetooth},
			Information:        model.PrinterInformation{Emulation: "escpos", Model: "TM-P20"},
		},
	}, printers)
}

func TestScanEnumeratorFailure(t *testing.T) {
	_, err := newTestScanner(nil, errors.New("permission denied")).Scan(context.Background())
	assert.ErrorContains(t, err, "failed to get serial ports")
}

func TestScanNoPorts(t *testing.T) {
	printers, err := newTestScanner(nil, nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, printers)
}

func TestInvalidPatternSkipped(t *testing.T) {
	s := NewScanner(zap.NewNop(), &Config{PortPatterns: []string{"([", "^COM3$"}}).
		WithPortLister(func() ([]*enumerator.PortDetails, error) {
			return []*enumerator.PortDetails{{Name: "COM3"}}, nil
		})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "COM3", printers[0].ConnectionSettings.Identifier)
}
