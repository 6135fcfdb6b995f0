package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleTable = Table{
	Title:   "Оборудование",
	Headers: []string{"ID", "Название", "Статус"},
	Rows: [][]string{
		{"1", "Беговая дорожка", "active"},
		{"2", "Гребной, \"Concept2\"", "maintenance"},
	},
}

func TestWriteCSV_StartsWithBOM(t *testing.T) {
	data, err := WriteCSV(sampleTable)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, sampleTable.Headers, records[0])
	assert.Equal(t, "Гребной, \"Concept2\"", records[2][1])
}

func TestWriteXLSX_BoldHeader(t *testing.T) {
	data, err := WriteXLSX(sampleTable)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Оборудование")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Беговая дорожка", rows[1][1])

	styleID, err := f.GetCellStyle("Оборудование", "C1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Отчёт", sheetName(""))
	assert.Len(t, []rune(sheetName("Очень длинное название отчёта по обслуживанию")), 31)
}
