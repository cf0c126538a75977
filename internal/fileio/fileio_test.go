package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
)

func TestStem(t *testing.T) {
	assert.Equal(t, "Adoni", Stem("Adoni.xlsx"))
	assert.Equal(t, "VSKP", Stem("/data/waqf/VSKP.xls"))
	assert.Equal(t, "dcb_2025", Stem("dcb_2025.csv"))
}

func TestReadSheetsUnsupported(t *testing.T) {
	_, err := ReadSheets(strings.NewReader(""), "data.pdf")
	require.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	csv := "Sl No,AP No,Name\n1,ABC/99,Sri Temple\n2,DEF/7,Sri Mosque\n,,\n"
	sheets, err := ReadSheets(strings.NewReader(csv), "Adoni.csv")
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	s := sheets[0]
	assert.Equal(t, "Adoni", s.Name)
	require.Len(t, s.Rows, 3, "trailing empty row dropped")
	assert.Equal(t, []string{"Sl No", "AP No", "Name"}, s.Rows[0])
	assert.Equal(t, "Sri Mosque", s.Rows[2][2])
}

func TestReadCSVRaggedRows(t *testing.T) {
	csv := "a,b,c\n1,2\n1,2,3,4\n"
	sheets, err := ReadSheets(strings.NewReader(csv), "x.csv")
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Len(t, sheets[0].Rows[1], 2)
	assert.Len(t, sheets[0].Rows[2], 4)
}

func TestReadXLSXAllSheets(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "District A"))
	_, err := f.NewSheet("District B")
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue("District A", "A1", "AP No"))
	require.NoError(t, f.SetCellValue("District A", "B1", "Name"))
	require.NoError(t, f.SetCellValue("District A", "A2", "ABC/99"))
	require.NoError(t, f.SetCellValue("District A", "B2", "Sri Temple"))
	require.NoError(t, f.SetCellValue("District B", "A1", "AP No"))
	require.NoError(t, f.SetCellValue("District B", "A2", "XYZ/1"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	sheets, err := ReadSheets(&buf, "districts.xlsx")
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "District A", sheets[0].Name)
	assert.Equal(t, "Sri Temple", sheets[0].Rows[1][1])
	assert.Equal(t, "District B", sheets[1].Name)
	assert.Equal(t, "XYZ/1", sheets[1].Rows[1][0])
}
