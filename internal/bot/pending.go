package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showPendingList(ctx context.Context, chatID int64, editMsgID *int) {
	payload := b.payload(ctx, chatID)
	f := filterFromPayload(payload)
	st := b.syncer.Snapshot()
	list := filterPending(st.PendingInvoices, f)
	delete(payload, dialog.KeySel)

	rows := branchRows("pre", pendingBranches(st.PendingInvoices), f)
	for i, it := range list {
		if i >= maxListButtons {
			break
		}
		label := truncate(fmt.Sprintf("NF %d · F%d · %s", it.InvoiceNumber, it.Branch, it.SupplierName), 60)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "pre:sel:"+it.Key().String()),
		))
	}
	rows = append(rows, toolRows("pre", f)...)
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])

	text := listHeader("📥 Pré-entradas", st.PendingTotal, len(list), f, st)
	mid := b.sendOrEdit(chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.saveLastStep(ctx, chatID, dialog.StatePreList, payload, mid)
}

func (b *Bot) showPendingCard(ctx context.Context, chatID int64, msgID int, k receiving.Key) {
	it, ok := findPending(b.syncer.Snapshot().PendingInvoices, k)
	if !ok {
		b.showPendingList(ctx, chatID, &msgID)
		return
	}
	text := fmt.Sprintf(
		"Registrar entrada desta nota?\n\nNF #%d\nFilial %d · Fornec %d\n%s",
		it.InvoiceNumber, it.Branch, it.SupplierCode, it.SupplierName,
	)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, pendingCardKeyboard(k)))

	payload := b.payload(ctx, chatID)
	payload[dialog.KeySel] = k.String()
	b.saveLastStep(ctx, chatID, dialog.StatePreConfirm, payload, msgID)
}

// doCreate обрабатывает «Registrar». На нажатие отвечаем сразу, итог приходит сообщением.
// При ошибке карточка остаётся открытой.
func (b *Bot) doCreate(ctx context.Context, cb *tgbotapi.CallbackQuery, k receiving.Key) {
	chatID := cb.Message.Chat.ID
	if !b.isSelected(ctx, chatID, k) {
		b.answerCallback(cb, "Cartão desatualizado. Abra a nota novamente.", true)
		return
	}
	release, ok := b.acquire("pre:" + k.String())
	if !ok {
		b.answerCallback(cb, "⏳ Salvando…", false)
		return
	}
	defer release()
	b.answerCallback(cb, "⏳ Salvando…", false)

	if _, err := b.syncer.CreateReceiptRegistration(ctx, k.Payload()); err != nil {
		b.log.Warn("create receipt failed", "key", k.String(), "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Erro ao registrar (talvez já exista)."))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Registrado: NF #%d", k.InvoiceNumber)))
	mid := cb.Message.MessageID
	b.showPendingList(ctx, chatID, &mid)
}

func (b *Bot) exportPending(ctx context.Context, chatID int64) {
	f := filterFromPayload(b.payload(ctx, chatID))
	list := filterPending(b.syncer.Snapshot().PendingInvoices, f)
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Nenhuma pré-entrada para exportar."))
		return
	}
	data, err := pendingWorkbook(list)
	if err != nil {
		b.log.Error("pending export failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Erro ao gerar o arquivo."))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("preentradas_%s.xlsx", time.Now().In(b.loc).Format("20060102_150405")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Pré-entradas: %d nota(s).", len(list))
	b.send(doc)
}

func findPending(items []receiving.PreEntradaItem, k receiving.Key) (receiving.PreEntradaItem, bool) {
	for _, it := range items {
		if it.Key() == k {
			return it, true
		}
	}
	return receiving.PreEntradaItem{}, false
}

// listHeader собирает заголовок списка с итогами, фильтром и статусом загрузки.
func listHeader(title string, total, shown int, f listFilter, st receiving.State) string {
	lines := []string{title, fmt.Sprintf("Total: %d · Filtradas: %d", total, shown)}
	if f.HasBranch {
		lines = append(lines, fmt.Sprintf("Filial: %d", f.Branch))
	}
	if f.Query != "" {
		lines = append(lines, fmt.Sprintf("Busca: «%s»", f.Query))
	}
	if st.Loading {
		lines = append(lines, "⏳ Carregando…")
	}
	if st.LastError != "" {
		lines = append(lines, "⚠️ "+st.LastError)
	}
	switch {
	case shown == 0:
		lines = append(lines, "\nNenhuma nota encontrada.")
	case shown > maxListButtons:
		lines = append(lines, fmt.Sprintf("\nMostrando %d de %d. Refine a busca.", maxListButtons, shown))
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) payload(ctx context.Context, chatID int64) dialog.Payload {
	st, err := b.states.Get(ctx, chatID)
	if err != nil || st == nil {
		if err != nil {
			b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		}
		return dialog.Payload{}
	}
	return st.Payload.Clone()
}
