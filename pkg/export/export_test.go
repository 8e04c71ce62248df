package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Pending listings",
		Columns: []string{"id", "title", "city"},
		Rows: [][]string{
			{"1", "Backend Developer", "Bakı"},
			{"2", "Könüllü, tədbir", "Şəki"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRenderer(t *testing.T) {
	out, err := CSVRenderer{}.Render(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "id,title,city\n1,Backend Developer,Bakı\n2,\"Könüllü, tədbir\",Şəki\n", string(out))
}

func TestPDFRenderer(t *testing.T) {
	r, err := RendererFor(FormatPDF)
	require.NoError(t, err)
	out, err := r.Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", r.ContentType())
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	tbl := sampleTable()
	tbl.Rows = append(tbl.Rows, []string{"3"})
	_, err := CSVRenderer{}.Render(tbl)
	assert.Error(t, err)
}
