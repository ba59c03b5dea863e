package escpos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-bridge/internal/driver/wire"
)

func TestParseStatusIdle(t *testing.T) {
	status, err := New().ParseStatus([]byte{0x12, 0x12, 0x12, 0x12})
	require.NoError(t, err)

	assert.False(t, status.HasError)
	assert.True(t, status.PaperPresent)
	assert.True(t, status.Printable())
}

func TestParseStatusFaults(t *testing.T) {
	status, err := New().ParseStatus([]byte{0x12, 0x16, 0x12, 0x12})
	require.NoError(t, err)
	assert.True(t, status.CoverOpen)
	assert.True(t, status.HasError)

	status, err = New().ParseStatus([]byte{0x12, 0x12, 0x12, 0x1E})
	require.NoError(t, err)
	assert.True(t, status.PaperNearEmpty)
	assert.False(t, status.PaperEmpty)
	assert.False(t, status.HasError)

	status, err = New().ParseStatus([]byte{0x12, 0x12, 0x12, 0x72})
	require.NoError(t, err)
	assert.True(t, status.PaperEmpty)
	assert.False(t, status.PaperPresent)
	assert.True(t, status.HasError)

	status, err = New().ParseStatus([]byte{0x12, 0x12, 0x1A, 0x12})
	require.NoError(t, err)
	assert.True(t, status.CutterError)
	assert.True(t, status.HasError)

	status, err = New().ParseStatus([]byte{0x16, 0x12, 0x12, 0x12})
	require.NoError(t, err)
	assert.True(t, status.DrawerOpenCloseSignal)
	assert.False(t, status.HasError)
}

func TestParseStatusRejectsGarbage(t *testing.T) {
	_, err := New().ParseStatus([]byte{0x12, 0x12})
	assert.True(t, errors.Is(err, wire.ErrBadStatus))

	_, err = New().ParseStatus([]byte{0x12, 0x00, 0x12, 0x12})
	assert.True(t, errors.Is(err, wire.ErrBadStatus))
}
