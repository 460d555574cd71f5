package bot

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	k, err := parseKey("1:1001:50")
	require.NoError(t, err)
	assert.Equal(t, receiving.Key{Branch: 1, InvoiceNumber: 1001, SupplierCode: 50}, k)
	assert.Equal(t, "1:1001:50", k.String())
	assert.Equal(t, receiving.EntradaPayload{BranchCode: 1, InvoiceNumber: 1001, SupplierCode: 50}, k.Payload())

	for _, bad := range []string{"", "1:2", "1:x:3", "1:2:3:4"} {
		_, err := parseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilterFromPayload(t *testing.T) {
	f := filterFromPayload(dialog.Payload{dialog.KeyBranch: float64(4), dialog.KeyQuery: "acme"})
	assert.Equal(t, listFilter{Branch: 4, HasBranch: true, Query: "acme"}, f)
	assert.Equal(t, listFilter{}, filterFromPayload(dialog.Payload{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "Açú…", truncate("Açúcar", 4))
}

func TestBranchRows(t *testing.T) {
	rows := branchRows("pre", []int64{1, 2, 3, 4, 5}, listFilter{Branch: 2, HasBranch: true})
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 4)
	assert.Len(t, rows[1], 2)
	assert.Equal(t, "Todas", rows[0][0].Text)
	assert.Equal(t, "• F2", rows[0][2].Text)
	require.NotNil(t, rows[0][2].CallbackData)
	assert.Equal(t, "pre:br:2", *rows[0][2].CallbackData)
}

func TestReceiptCardKeyboard(t *testing.T) {
	open := receiptCardKeyboard(receiving.EntradaNotaItem{Branch: 1, InvoiceNumber: 9, SupplierCode: 3})
	require.Len(t, open.InlineKeyboard, 2)
	assert.Equal(t, "ent:do:1:9:3", *open.InlineKeyboard[0][0].CallbackData)

	done := receiptCardKeyboard(receiving.EntradaNotaItem{Confirmed: true})
	assert.Len(t, done.InlineKeyboard, 1)
}

func TestListHeader(t *testing.T) {
	h := listHeader("📥 Pré-entradas", 40, 35, listFilter{Query: "acme"}, receiving.State{Loading: true, LastError: "falhou"})
	assert.Contains(t, h, "Total: 40 · Filtradas: 35")
	assert.Contains(t, h, "Busca: «acme»")
	assert.Contains(t, h, "⏳ Carregando…")
	assert.Contains(t, h, "⚠️ falhou")
	assert.Contains(t, h, "Mostrando 30 de 35")

	assert.Contains(t, listHeader("x", 0, 0, listFilter{}, receiving.State{}), "Nenhuma nota encontrada.")
}

func TestErrorNoticeOnlyOnChange(t *testing.T) {
	b := &Bot{}
	assert.Empty(t, b.errorNotice(receiving.State{}))
	assert.Equal(t, "⚠️ Falha na sincronização: timeout", b.errorNotice(receiving.State{LastError: "timeout"}))
	assert.Empty(t, b.errorNotice(receiving.State{LastError: "timeout"}))
	assert.Empty(t, b.errorNotice(receiving.State{}))
	assert.NotEmpty(t, b.errorNotice(receiving.State{LastError: "timeout"}))
}

func TestSelectedKey(t *testing.T) {
	k, ok := selectedKey(dialog.Payload{dialog.KeySel: "2:77:9"})
	require.True(t, ok)
	assert.Equal(t, receiving.Key{Branch: 2, InvoiceNumber: 77, SupplierCode: 9}, k)

	_, ok = selectedKey(dialog.Payload{})
	assert.False(t, ok)
	_, ok = selectedKey(dialog.Payload{dialog.KeySel: "garbage"})
	assert.False(t, ok)
}

func TestAcquireRejectsSecondTapUntilReleased(t *testing.T) {
	b := &Bot{}

	release, ok := b.acquire("pre:1:10:5")
	require.True(t, ok)

	var wg sync.WaitGroup
	var granted atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := b.acquire("pre:1:10:5"); ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, granted.Load())

	other, ok := b.acquire("ent:1:10:5")
	require.True(t, ok, "confirm is keyed separately")
	other()

	release()
	again, ok := b.acquire("pre:1:10:5")
	require.True(t, ok)
	again()
}
