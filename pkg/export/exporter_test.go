package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Name", "Package"},
		Rows: []map[string]string{
			{"Name": "Rahul Sharma", "Package": "12 LPA"},
			{"Name": "Priya Patel", "Package": "14 LPA"},
		},
		Footer: [][2]string{{"Total Selected", "2"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), "ignored")
	require.NoError(t, err)

	assert.Equal(t, "Name,Package\nRahul Sharma,12 LPA\nPriya Patel,14 LPA\n\nTotal Selected,2\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Selected Students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
