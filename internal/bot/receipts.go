package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showReceiptList(ctx context.Context, chatID int64, editMsgID *int) {
	payload := b.payload(ctx, chatID)
	f := filterFromPayload(payload)
	st := b.syncer.Snapshot()
	list := filterReceipts(st.ReceiptRecords, f)
	delete(payload, dialog.KeySel)

	rows := branchRows("ent", receiptBranches(st.ReceiptRecords), f)
	for i, it := range list {
		if i >= maxListButtons {
			break
		}
		label := truncate(fmt.Sprintf("%s NF %d · F%d · %s", badge(it.Confirmed), it.InvoiceNumber, it.Branch, it.SupplierName), 60)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "ent:sel:"+it.Key().String()),
		))
	}
	rows = append(rows, toolRows("ent", f)...)
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])

	text := listHeader("✅ Entradas", st.ReceiptTotal, len(list), f, st)
	mid := b.sendOrEdit(chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.saveLastStep(ctx, chatID, dialog.StateEntList, payload, mid)
}

func (b *Bot) showReceiptCard(ctx context.Context, chatID int64, msgID int, k receiving.Key) {
	it, ok := findReceipt(b.syncer.Snapshot().ReceiptRecords, k)
	if !ok {
		b.showReceiptList(ctx, chatID, &msgID)
		return
	}
	status := "Pendente"
	if it.Confirmed {
		status = "Confirmada"
	}
	text := fmt.Sprintf(
		"%s NF #%d\nFilial %d · Fornec %d\n%s\nStatus: %s",
		badge(it.Confirmed), it.InvoiceNumber, it.Branch, it.SupplierCode, it.SupplierName, status,
	)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, receiptCardKeyboard(it)))

	payload := b.payload(ctx, chatID)
	payload[dialog.KeySel] = k.String()
	b.saveLastStep(ctx, chatID, dialog.StateEntConfirm, payload, msgID)
}

// doConfirm обрабатывает «Confirmar». Уже подтверждённые ноты сюда не пускаем: синхронизатор этого не проверяет.
func (b *Bot) doConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, k receiving.Key) {
	chatID := cb.Message.Chat.ID
	if !b.isSelected(ctx, chatID, k) {
		b.answerCallback(cb, "Cartão desatualizado. Abra a nota novamente.", true)
		return
	}
	if it, ok := findReceipt(b.syncer.Snapshot().ReceiptRecords, k); ok && it.Confirmed {
		b.answerCallback(cb, "Entrada já confirmada.", true)
		return
	}
	release, ok := b.acquire("ent:" + k.String())
	if !ok {
		b.answerCallback(cb, "⏳ Confirmando…", false)
		return
	}
	defer release()
	b.answerCallback(cb, "⏳ Confirmando…", false)

	if _, err := b.syncer.ConfirmReceiptRegistration(ctx, k.Payload()); err != nil {
		b.log.Warn("confirm receipt failed", "key", k.String(), "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Erro ao confirmar entrada."))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Entrada confirmada: NF #%d", k.InvoiceNumber)))
	mid := cb.Message.MessageID
	b.showReceiptList(ctx, chatID, &mid)
}

func (b *Bot) exportReceipts(ctx context.Context, chatID int64) {
	f := filterFromPayload(b.payload(ctx, chatID))
	list := filterReceipts(b.syncer.Snapshot().ReceiptRecords, f)
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Nenhuma entrada para exportar."))
		return
	}
	data, err := receiptsWorkbook(list)
	if err != nil {
		b.log.Error("receipts export failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Erro ao gerar o arquivo."))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("entradas_%s.xlsx", time.Now().In(b.loc).Format("20060102_150405")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Entradas: %d nota(s).", len(list))
	b.send(doc)
}

func findReceipt(items []receiving.EntradaNotaItem, k receiving.Key) (receiving.EntradaNotaItem, bool) {
	for _, it := range items {
		if it.Key() == k {
			return it, true
		}
	}
	return receiving.EntradaNotaItem{}, false
}
