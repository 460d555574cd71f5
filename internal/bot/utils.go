package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

// clearPrevStep убрать inline-кнопки у прошлого шага, если он был
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, err := b.states.Get(ctx, chatID)
	if err != nil || st == nil {
		return
	}
	if mid, ok := dialog.GetInt64(st.Payload, dialog.KeyLastMID); ok {
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, int(mid), rm))
	}
}

// saveLastStep сохранить id текущего бот-сообщения как «последний»
func (b *Bot) saveLastStep(ctx context.Context, chatID int64, nextState dialog.State, payload dialog.Payload, newMID int) {
	payload = payload.Clone()
	payload[dialog.KeyLastMID] = float64(newMID)
	if err := b.states.Set(ctx, chatID, nextState, payload); err != nil {
		b.log.Error("save dialog state failed", "chat_id", chatID, "err", err)
	}
}

// sendOrEdit редактирует сообщение editMsgID или отправляет новое; возвращает id сообщения.
func (b *Bot) sendOrEdit(chatID int64, editMsgID *int, text string, kb tgbotapi.InlineKeyboardMarkup) int {
	if editMsgID != nil {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, *editMsgID, text, kb))
		return *editMsgID
	}
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

// parseKey разбирает "filial:nota:fornec" из callback data.
func parseKey(s string) (receiving.Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return receiving.Key{}, fmt.Errorf("bad key %q", s)
	}
	var nums [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return receiving.Key{}, fmt.Errorf("bad key %q: %w", s, err)
		}
		nums[i] = n
	}
	return receiving.Key{Branch: nums[0], InvoiceNumber: nums[1], SupplierCode: nums[2]}, nil
}

// selectedKey возвращает ноту, карточка которой сейчас открыта.
func selectedKey(p dialog.Payload) (receiving.Key, bool) {
	s, ok := dialog.GetString(p, dialog.KeySel)
	if !ok {
		return receiving.Key{}, false
	}
	k, err := parseKey(s)
	return k, err == nil
}

// isSelected проверяет, что кнопка нажата на актуальной карточке, а не на старом сообщении.
func (b *Bot) isSelected(ctx context.Context, chatID int64, k receiving.Key) bool {
	sel, ok := selectedKey(b.payload(ctx, chatID))
	return ok && sel == k
}

func filterFromPayload(p dialog.Payload) listFilter {
	var f listFilter
	if br, ok := dialog.GetInt64(p, dialog.KeyBranch); ok {
		f.Branch, f.HasBranch = br, true
	}
	f.Query, _ = dialog.GetString(p, dialog.KeyQuery)
	return f
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// Бейдж статуса энтрады
func badge(confirmed bool) string {
	if confirmed {
		return "🟢"
	}
	return "🟡"
}
