package spreadsheet

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_SkipsBannerRows(t *testing.T) {
	data := []byte("Acme Traders\nClosing Stock Report\nItem Code,MRP,Closing Qty\nA1,100,5\n")

	r, err := NewReader(data, WithBannerRows(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"Item Code", "MRP", "Closing Qty"}, r.Headers())

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].Get("Item Code"))
	assert.Equal(t, "100", rows[0].Get("MRP"))
}

func TestNewReader_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Item Code,MRP\nA1,10\n")...)

	r, err := NewReader(data)
	require.NoError(t, err)
	assert.True(t, r.HasHeader("Item Code"))
}

func TestNewReader_EmptyFile(t *testing.T) {
	_, err := NewReader(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestNewReader_InvalidEncoding(t *testing.T) {
	_, err := NewReader([]byte{0xFF, 0xFE, 0x00, 0x41})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestNewReader_BannerConsumesWholeFile(t *testing.T) {
	_, err := NewReader([]byte("only one row\n"), WithBannerRows(2))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestReadAll_SkipsEmptyRows(t *testing.T) {
	data := []byte("Item Code,MRP\nA1,10\n,,\nB2,20\n")

	r, err := NewReader(data)
	require.NoError(t, err)

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B2", rows[1].Get("Item Code"))
}

func TestReadRow_ShortRecordPadsColumns(t *testing.T) {
	data := []byte("Item Code,MRP,Closing Qty\nA1,10\n")

	r, err := NewReader(data)
	require.NoError(t, err)

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "", row.Get("Closing Qty"))

	_, err = r.ReadRow()
	assert.Equal(t, io.EOF, err)
}
