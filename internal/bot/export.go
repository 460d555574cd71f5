package bot

import (
	"bytes"
	"fmt"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/xuri/excelize/v2"
)

func pendingWorkbook(items []receiving.PreEntradaItem) ([]byte, error) {
	header := []interface{}{"filial", "numnota", "codfornec", "fornecedor"}
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.Branch, it.InvoiceNumber, it.SupplierCode, it.SupplierName})
	}
	return buildWorkbook("Pré-entradas", header, rows)
}

func receiptsWorkbook(items []receiving.EntradaNotaItem) ([]byte, error) {
	header := []interface{}{"filial", "numnota", "codfornec", "fornecedor", "entrada"}
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		status := "N"
		if it.Confirmed {
			status = "S"
		}
		rows = append(rows, []interface{}{it.Branch, it.InvoiceNumber, it.SupplierCode, it.SupplierName, status})
	}
	return buildWorkbook("Entradas", header, rows)
}

func buildWorkbook(sheetName string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = sheetName

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return buf.Bytes(), nil
}
