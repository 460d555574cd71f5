package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Olá! Use «Pré-entradas» para registrar notas recebidas e «Entradas» para confirmá-las.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Comandos:\n/start — menu principal\n/help — ajuda\n\n"+
				btnPending+" — notas aguardando registro\n"+
				btnReceipts+" — entradas registradas e confirmação\n"+
				btnRefresh+" — recarregar as duas listas"))
	default:
		b.send(tgbotapi.NewMessage(chatID, "Comando desconhecido. Digite /help"))
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch text {
	case btnPending:
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Set(ctx, chatID, dialog.StatePreList, dialog.Payload{})
		b.showPendingList(ctx, chatID, nil)
		return
	case btnReceipts:
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Set(ctx, chatID, dialog.StateEntList, dialog.Payload{})
		b.showReceiptList(ctx, chatID, nil)
		return
	case btnRefresh:
		b.syncer.Refresh(ctx)
		st := b.syncer.Snapshot()
		out := fmt.Sprintf("Listas atualizadas.\nPré-entradas: %d\nEntradas: %d", st.PendingTotal, st.ReceiptTotal)
		if st.LastError != "" {
			out += "\n⚠️ " + st.LastError
		}
		b.send(tgbotapi.NewMessage(chatID, out))
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		return
	}
	switch st.State {
	case dialog.StatePreSearch:
		b.clearPrevStep(ctx, chatID)
		p := st.Payload.Clone()
		p[dialog.KeyQuery] = text
		_ = b.states.Set(ctx, chatID, dialog.StatePreList, p)
		b.showPendingList(ctx, chatID, nil)
	case dialog.StateEntSearch:
		b.clearPrevStep(ctx, chatID)
		p := st.Payload.Clone()
		p[dialog.KeyQuery] = text
		_ = b.states.Set(ctx, chatID, dialog.StateEntList, p)
		b.showReceiptList(ctx, chatID, nil)
	default:
		m := tgbotapi.NewMessage(chatID, "Use o menu abaixo.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
	}
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	data := cb.Data

	switch {
	case data == "nav:cancel":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, mid, "Cancelado.")
		b.answerCallback(cb, "", false)

	case data == "nav:back":
		b.answerCallback(cb, "", false)
		st, err := b.states.Get(ctx, chatID)
		if err != nil {
			b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
			return
		}
		switch st.State {
		case dialog.StatePreConfirm, dialog.StatePreSearch:
			b.showPendingList(ctx, chatID, &mid)
		case dialog.StateEntConfirm, dialog.StateEntSearch:
			b.showReceiptList(ctx, chatID, &mid)
		default:
			b.editTextAndClear(chatID, mid, "Use o menu abaixo.")
		}

	case strings.HasPrefix(data, "pre:"):
		b.onListCallback(ctx, cb, pendingScreen, strings.TrimPrefix(data, "pre:"))

	case strings.HasPrefix(data, "ent:"):
		b.onListCallback(ctx, cb, receiptScreen, strings.TrimPrefix(data, "ent:"))

	default:
		b.answerCallback(cb, "", false)
	}
}

// listScreen: различия между экранами «Pré-entradas» и «Entradas».
type listScreen struct {
	list   dialog.State
	search dialog.State
	show   func(b *Bot, ctx context.Context, chatID int64, editMsgID *int)
	card   func(b *Bot, ctx context.Context, chatID int64, msgID int, key string)
	do     func(b *Bot, ctx context.Context, cb *tgbotapi.CallbackQuery, key string)
	export func(b *Bot, ctx context.Context, chatID int64)
}

var pendingScreen = listScreen{
	list:   dialog.StatePreList,
	search: dialog.StatePreSearch,
	show:   (*Bot).showPendingList,
	card: func(b *Bot, ctx context.Context, chatID int64, msgID int, key string) {
		if k, err := parseKey(key); err == nil {
			b.showPendingCard(ctx, chatID, msgID, k)
		}
	},
	do: func(b *Bot, ctx context.Context, cb *tgbotapi.CallbackQuery, key string) {
		if k, err := parseKey(key); err == nil {
			b.doCreate(ctx, cb, k)
		}
	},
	export: (*Bot).exportPending,
}

var receiptScreen = listScreen{
	list:   dialog.StateEntList,
	search: dialog.StateEntSearch,
	show:   (*Bot).showReceiptList,
	card: func(b *Bot, ctx context.Context, chatID int64, msgID int, key string) {
		if k, err := parseKey(key); err == nil {
			b.showReceiptCard(ctx, chatID, msgID, k)
		}
	},
	do: func(b *Bot, ctx context.Context, cb *tgbotapi.CallbackQuery, key string) {
		if k, err := parseKey(key); err == nil {
			b.doConfirm(ctx, cb, k)
		}
	},
	export: (*Bot).exportReceipts,
}

func (b *Bot) onListCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, s listScreen, data string) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	action, arg, _ := strings.Cut(data, ":")

	// мутация отвечает на callback сама (alert с результатом) и может идти до 15 с
	if action == "do" {
		go s.do(b, ctx, cb, arg)
		return
	}
	b.answerCallback(cb, "", false)

	switch action {
	case "br":
		p := b.payload(ctx, chatID)
		if arg == "all" {
			delete(p, dialog.KeyBranch)
		} else if br, err := strconv.ParseInt(arg, 10, 64); err == nil {
			p[dialog.KeyBranch] = br
		}
		_ = b.states.Set(ctx, chatID, s.list, p)
		s.show(b, ctx, chatID, &mid)

	case "search":
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, mid,
			"Digite o fornecedor ou o número da nota:", navKeyboard(true, true)))
		b.saveLastStep(ctx, chatID, s.search, b.payload(ctx, chatID), mid)

	case "clear":
		p := b.payload(ctx, chatID)
		delete(p, dialog.KeyQuery)
		_ = b.states.Set(ctx, chatID, s.list, p)
		s.show(b, ctx, chatID, &mid)

	case "export":
		s.export(b, ctx, chatID)

	case "sel":
		s.card(b, ctx, chatID, mid, arg)
	}
}
