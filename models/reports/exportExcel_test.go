package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportLeaderboardExcel(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()
	counsellor := createCounsellor(t, ctx, "c1@edulink.local")
	now := time.Now()
	createClient(t, ctx, counsellor.ID, now)

	data, err := ExportLeaderboardExcel(ctx, int(now.Month()), now.Year())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Rank", header)

	name, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, counsellor.FullName, name)
}

func TestExportLeaderboardExcelRejectsBadPeriod(t *testing.T) {
	setupTestDB(t)
	_, err := ExportLeaderboardExcel(adminCtx(), 0, 2025)
	require.Error(t, err)
}
