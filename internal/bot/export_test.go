package bot

import (
	"bytes"
	"testing"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return sheet, rows
}

func TestPendingWorkbook(t *testing.T) {
	data, err := pendingWorkbook(samplePending[:2])
	require.NoError(t, err)

	sheet, rows := readSheet(t, data)
	assert.Equal(t, "Pré-entradas", sheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"filial", "numnota", "codfornec", "fornecedor"}, rows[0])
	assert.Equal(t, []string{"2", "1002", "51", "Beta Distribuição"}, rows[1])
	assert.Equal(t, []string{"1", "1001", "50", "Acme"}, rows[2])
}

func TestReceiptsWorkbook(t *testing.T) {
	data, err := receiptsWorkbook([]receiving.EntradaNotaItem{
		{Branch: 1, InvoiceNumber: 1001, SupplierCode: 50, SupplierName: "Acme", Confirmed: true},
		{Branch: 1, InvoiceNumber: 1003, SupplierCode: 50, SupplierName: "Acme"},
	})
	require.NoError(t, err)

	sheet, rows := readSheet(t, data)
	assert.Equal(t, "Entradas", sheet)
	require.Len(t, rows, 3)
	assert.Equal(t, "entrada", rows[0][4])
	assert.Equal(t, "S", rows[1][4])
	assert.Equal(t, "N", rows[2][4])
}
