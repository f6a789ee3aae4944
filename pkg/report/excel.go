package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteExcel renders data as a two-sheet workbook (Summary, Routes) and
// returns its bytes.
func WriteExcel(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeSummarySheet(f, data, headerStyle)
	writeRoutesSheet(f, data, headerStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, data Data, headerStyle int) {
	sheet := "Summary"
	f.NewSheet(sheet)

	row := 1
	f.SetCellValue(sheet, cellAddr("A", row), fmt.Sprintf("CVRP Run Report — %s", data.InstanceName))
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("B", row))
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row += 2

	rows := []struct {
		label string
		value any
	}{
		{"Run ID", data.RunID},
		{"Capacity", data.Capacity},
		{"Routes", data.NumRoutes},
		{"Customers", data.NumNodes},
		{"Total Cost", data.TotalCost},
		{"Gap to BKS", formatGap(data.GapPercent)},
		{"Iterations", data.Iterations},
		{"Runtime", formatDuration(data.Runtime)},
	}
	for _, r := range rows {
		f.SetCellValue(sheet, cellAddr("A", row), r.label)
		f.SetCellValue(sheet, cellAddr("B", row), r.value)
		row++
	}
}

func writeRoutesSheet(f *excelize.File, data Data, headerStyle int) {
	sheet := "Routes"
	f.NewSheet(sheet)

	headers := []string{"Route", "Sequence", "Stops", "Load", "Cost"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, cellAddr("A", 1), cellAddr("E", 1), headerStyle)

	row := 2
	for _, r := range data.Routes {
		f.SetCellValue(sheet, cellAddr("A", row), r.Index)
		f.SetCellValue(sheet, cellAddr("B", row), r.Nodes)
		f.SetCellValue(sheet, cellAddr("C", row), r.Size)
		f.SetCellValue(sheet, cellAddr("D", row), r.Volume)
		f.SetCellValue(sheet, cellAddr("E", row), r.Cost)
		row++
	}
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
