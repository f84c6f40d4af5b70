package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportLeaderboardExcel renders one month's leaderboard as an XLSX workbook
// and returns the serialized bytes for the handler to stream out.
func ExportLeaderboardExcel(ctx context.Context, month, year int) ([]byte, error) {
	rows, err := GetLeaderboard(ctx, month, year)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "Rank")
	f.SetCellValue(sheetName, "B1", "Counsellor")
	f.SetCellValue(sheetName, "C1", "Enrollments")
	f.SetCellValue(sheetName, "D1", "Revenue")
	f.SetCellValue(sheetName, "E1", "Target")
	f.SetCellValue(sheetName, "F1", "Achieved")

	// Add data
	for i, row := range rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+rowNo, row.Rank)
		f.SetCellValue(sheetName, "B"+rowNo, row.CounsellorName)
		f.SetCellValue(sheetName, "C"+rowNo, row.Enrollments)
		f.SetCellValue(sheetName, "D"+rowNo, row.Revenue.String())
		f.SetCellValue(sheetName, "E"+rowNo, row.Target)
		f.SetCellValue(sheetName, "F"+rowNo, row.AchievedTarget)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
