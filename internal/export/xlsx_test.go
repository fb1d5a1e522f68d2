package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

func TestWriteXLSX(t *testing.T) {
	row := sampleRow()
	row.Warnings = []string{"Unit format invalid."}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []domain.DeliveryRow{row}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leveringen")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Datum", "Aantal", "Eenheid",
		"Hoogte enkel", "Hoogte gestapeld", "Aantal aangepast", "Pallet",
		"Bestand", "Pagina", "Waarschuwingen",
	}, rows[0])

	assert.Equal(t, "12-08-2026", rows[1][0])
	assert.Equal(t, "EURO", rows[1][6])
	assert.Equal(t, "cmr-week34.pdf", rows[1][7])
	assert.Equal(t, "2", rows[1][8])
	assert.Equal(t, "Unit format invalid.", rows[1][9])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leveringen")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
