package bot

import (
	"testing"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/stretchr/testify/assert"
)

var samplePending = []receiving.PreEntradaItem{
	{Branch: 2, InvoiceNumber: 1002, SupplierCode: 51, SupplierName: "Beta Distribuição"},
	{Branch: 1, InvoiceNumber: 1001, SupplierCode: 50, SupplierName: "Acme"},
	{Branch: 1, InvoiceNumber: 2050, SupplierCode: 52, SupplierName: "Açúcar União"},
}

func TestFold(t *testing.T) {
	assert.Equal(t, "acucar uniao", fold("  Açúcar União "))
	assert.Equal(t, "distribuicao", fold("DISTRIBUIÇÃO"))
}

func TestFilterPending(t *testing.T) {
	assert.Len(t, filterPending(samplePending, listFilter{}), 3)

	byBranch := filterPending(samplePending, listFilter{Branch: 1, HasBranch: true})
	assert.Len(t, byBranch, 2)

	bySupplier := filterPending(samplePending, listFilter{Query: "acucar"})
	if assert.Len(t, bySupplier, 1) {
		assert.Equal(t, int64(2050), bySupplier[0].InvoiceNumber)
	}

	byInvoice := filterPending(samplePending, listFilter{Query: "100"})
	assert.Len(t, byInvoice, 2)

	combined := filterPending(samplePending, listFilter{Branch: 2, HasBranch: true, Query: "100"})
	if assert.Len(t, combined, 1) {
		assert.Equal(t, int64(1002), combined[0].InvoiceNumber)
	}

	assert.Empty(t, filterPending(samplePending, listFilter{Query: "zzz"}))
}

func TestFilterReceipts(t *testing.T) {
	items := []receiving.EntradaNotaItem{
		{Branch: 3, InvoiceNumber: 10, SupplierName: "Gama", Confirmed: true},
		{Branch: 4, InvoiceNumber: 11, SupplierName: "Delta"},
	}
	got := filterReceipts(items, listFilter{Query: "DEL"})
	if assert.Len(t, got, 1) {
		assert.Equal(t, int64(11), got[0].InvoiceNumber)
	}
	assert.Equal(t, []int64{3, 4}, receiptBranches(items))
}

func TestDistinctBranches(t *testing.T) {
	assert.Equal(t, []int64{1, 2}, pendingBranches(samplePending))
	assert.Empty(t, distinctBranches(nil))
}
