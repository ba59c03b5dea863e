// internal/discovery/usb/scanner_test.go
package usb

import (
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

func TestIdentifyKnownProduct(t *testing.T) {
	s := NewScanner(zap.NewNop(), nil)

	found, ok := s.identify(&gousb.DeviceDesc{Vendor: 0x04B8, Product: 0x0202})
	assert.True(t, ok)
	assert.Equal(t, model.FoundPrinter{
		ConnectionSettings: model.ConnectionSettings{Identifier: "04b8:0202", Interface: model.InterfaceUSB},
		Information:        model.PrinterInformation{Emulation: "escpos", Model: "TM-T88IV"},
	}, found)
}

func TestIdentifyStarUsesStarLine(t *testing.T) {
	s := NewScanner(zap.NewNop(), nil)

	found, ok := s.identify(&gousb.DeviceDesc{Vendor: 0x0519, Product: 0x0099})
	assert.True(t, ok)
	assert.Equal(t, "starline", found.Information.Emulation)
	assert.Equal(t, "STAR Unknown-0099", found.Information.Model)
}

func TestIdentifyByPrinterClass(t *testing.T) {
	desc := &gousb.DeviceDesc{
		Vendor:  0x1234,
		Product: 0xabcd,
		Configs: map[int]gousb.ConfigDesc{
			1: {Number: 1, Interfaces: []gousb.InterfaceDesc{{
				Number:      0,
				AltSettings: []gousb.InterfaceSetting{{Class: gousb.ClassPrinter}},
			}}},
		},
	}

	found, ok := NewScanner(zap.NewNop(), nil).identify(desc)
	assert.True(t, ok)
	assert.Equal(t, "1234:abcd", found.ConnectionSettings.Identifier)
	assert.Equal(t, "Generic-USB-1234:ABCD", found.Information.Model)

	_, ok = NewScanner(zap.NewNop(), &Config{FilterByClass: false}).identify(desc)
	assert.False(t, ok)
}

func TestIdentifyIgnoresOtherDevices(t *testing.T) {
	_, ok := NewScanner(zap.NewNop(), nil).identify(&gousb.DeviceDesc{Vendor: 0x046d, Product: 0xc52b, Class: gousb.ClassHID})
	assert.False(t, ok)
}

func TestDeviceDatabase(t *testing.T) {
	db := NewDeviceDatabase()
	total := db.GetTotalProductCount()
	assert.True(t, db.IsKnownVendor(0x1504))

	db.AddVendor(0x0dd4, &VendorInfo{Brand: model.BrandGeneric, Name: "Custom Engineering"})
	db.AddProduct(0x0dd4, 0x0205, &ProductInfo{Model: "KUBE II"})
	assert.Equal(t, total+1, db.GetTotalProductCount())
	assert.Equal(t, "KUBE II", db.GetVendorInfo(0x0dd4).GetProductInfo(0x0205).Model)
}

func TestScannerRegistersConfiguredDevices(t *testing.T) {
	scanner := NewScanner(zap.NewNop(), &Config{ExtraDevices: []KnownDevice{
		{VendorID: 0x0dd4, ProductID: 0x0205, Vendor: "Custom Engineering", Model: "KUBE II"},
		{VendorID: 0x04B8, ProductID: 0x0e28, Model: "TM-m30III"},
	}})

	info := scanner.knownDevices.GetVendorInfo(0x0dd4)
	require.NotNil(t, info)
	assert.Equal(t, model.BrandGeneric, info.Brand)

	// an existing vendor keeps its brand and gains the product
	epson := scanner.knownDevices.GetVendorInfo(0x04B8)
	assert.Equal(t, model.BrandEpson, epson.Brand)
	assert.Equal(t, "TM-m30III", epson.GetProductInfo(0x0e28).Model)
}
