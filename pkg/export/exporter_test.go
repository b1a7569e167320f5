package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title: "Salsa",
		Columns: []Column{
			{Key: "name", Label: "Alumno", Width: 3},
			{Key: "payment_status", Label: "Pago"},
			{Key: "attendance_count"},
		},
		Rows: []map[string]string{
			{"name": "Perez, Lucía", "payment_status": "activo", "attendance_count": "4"},
			{"name": "Gómez, Juan", "payment_status": "pendiente"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter(false).Render(rosterDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Alumno,Pago,attendance_count", lines[0])
	assert.Equal(t, `"Perez, Lucía",activo,4`, lines[1])
	assert.Equal(t, `"Gómez, Juan",pendiente,`, lines[2])
}

func TestCSVExporterWritesBOM(t *testing.T) {
	out, err := NewCSVExporter(true).Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\ufeff")))
}

func TestExportersRequireColumns(t *testing.T) {
	_, err := NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := rosterDataset()
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, map[string]string{"name": "Alumno", "payment_status": "activo"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(rosterDataset().Columns)
	assert.InDelta(t, pdfPageWidth, widths[0]+widths[1]+widths[2], 0.001)
	assert.InDelta(t, 3*widths[1], widths[0], 0.001)
}
