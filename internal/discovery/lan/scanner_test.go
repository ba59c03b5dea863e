// internal/discovery/lan/scanner_test.go
package lan

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

func TestExpandCIDR(t *testing.T) {
	hosts, err := ExpandCIDR("192.168.1.0/30")
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "192.168.1.1", hosts[0].String())
	assert.Equal(t, "192.168.1.2", hosts[1].String())

	hosts, err = ExpandCIDR("10.0.0.7/32")
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "10.0.0.7", hosts[0].String())

	hosts, err = ExpandCIDR("10.0.0.5/24")
	require.NoError(t, err)
	assert.Len(t, hosts, 254)

	_, err = ExpandCIDR("10.0.0.0/8")
	assert.Error(t, err)
	_, err = ExpandCIDR("fe80::/120")
	assert.Error(t, err)
	_, err = ExpandCIDR("not-a-range")
	assert.Error(t, err)
}

func TestScanReportsOpenPorts(t *testing.T) {
	s := NewScanner(zap.NewNop(), &Config{
		Hosts:       []string{"192.0.2.10", "192.0.2.11:9101", "192.0.2.10"},
		CIDR:        "198.51.100.0/30",
		Concurrency: 4,
	}).WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		switch address {
		case "192.0.2.10:9100", "198.51.100.2:9100":
			client, server := net.Pipe()
			server.Close()
			return client, nil
		default:
			return nil, errors.New("connection refused")
		}
	})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.FoundPrinter{
		{
			ConnectionSettings: model.ConnectionSettings{Identifier: "192.0.2.10:9100", Interface: model.InterfaceLAN},
			Information:        model.PrinterInformation{Emulation: "escpos", Model: "Network Printer"},
		},
		{
			ConnectionSettings: model.ConnectionSettings{Identifier: "198.51.100.2:9100", Interface: model.InterfaceLAN},
			Information:        model.PrinterInformation{Emulation: "escpos", Model: "Network Printer"},
		},
	}, printers)
}

func TestScanRealListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	s := NewScanner(zap.NewNop(), &Config{
		Hosts:       []string{"127.0.0.1"},
		Port:        port,
		ConnTimeout: time.Second,
	})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), printers[0].ConnectionSettings.Identifier)
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, NewScanner(zap.NewNop(), nil).IsAvailable())
	assert.True(t, NewScanner(zap.NewNop(), &Config{CIDR: "10.0.0.0/24"}).IsAvailable())
}
