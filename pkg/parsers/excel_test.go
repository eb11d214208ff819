package parsers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Orders"))
	_, err := f.NewSheet("Summary")
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue("Orders", "A1", 10))
	require.NoError(t, f.SetCellFormula("Summary", "A1", "=Orders!A1*2"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestExcelParser_EndToEnd(t *testing.T) {
	data := buildWorkbook(t)
	p := &ExcelParser{}
	require.True(t, p.Validate("book.xlsx", data))

	doc, err := p.Parse(context.Background(), "book.xlsx", data)
	require.NoError(t, err)
	require.Len(t, doc.Components, 2)

	var calls int
	for _, d := range doc.Dependencies {
		if string(d.Kind) == "CALLS" {
			calls++
		}
	}
	require.Equal(t, 1, calls)
}
