package bot

import (
	"fmt"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnPending  = "📥 Pré-entradas"
	btnReceipts = "✅ Entradas"
	btnRefresh  = "🔄 Atualizar"
)

// maxListButtons: сколько нот показываем кнопками в одном сообщении.
const maxListButtons = 30

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Voltar", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// mainReplyKeyboard Нижняя панель
func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnPending), tgbotapi.NewKeyboardButton(btnReceipts)},
			{tgbotapi.NewKeyboardButton(btnRefresh)},
		},
	}
}

// branchRows: ряды кнопок фильтра по филиалу, по 4 в ряд. prefix: "pre" или "ent".
func branchRows(prefix string, branches []int64, f listFilter) [][]tgbotapi.InlineKeyboardButton {
	mark := func(on bool, label string) string {
		if on {
			return "• " + label
		}
		return label
	}
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(mark(!f.HasBranch, "Todas"), prefix+":br:all"),
	}
	for _, br := range branches {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			mark(f.HasBranch && f.Branch == br, fmt.Sprintf("F%d", br)),
			fmt.Sprintf("%s:br:%d", prefix, br),
		))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for len(buttons) > 0 {
		n := 4
		if len(buttons) < n {
			n = len(buttons)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons[:n]...))
		buttons = buttons[n:]
	}
	return rows
}

// toolRows: поиск/сброс поиска и выгрузка.
func toolRows(prefix string, f listFilter) [][]tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔎 Buscar", prefix+":search"),
	}
	if f.Query != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🧹 Limpar busca", prefix+":clear"))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬇️ Excel", prefix+":export"))
	return [][]tgbotapi.InlineKeyboardButton{row}
}

func pendingCardKeyboard(k receiving.Key) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Registrar entrada", "pre:do:"+k.String()),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func receiptCardKeyboard(it receiving.EntradaNotaItem) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if !it.Confirmed {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirmar entrada", "ent:do:"+it.Key().String()),
		))
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
