package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/preentrada-bot/internal/dialog"
	"github.com/Spok95/preentrada-bot/internal/receiving"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Receiving: то, что бот использует от синхронизатора.
type Receiving interface {
	Snapshot() receiving.State
	Subscribe(fn func(receiving.State)) func()
	Refresh(ctx context.Context)
	CreateReceiptRegistration(ctx context.Context, p receiving.EntradaPayload) (map[string]any, error)
	ConfirmReceiptRegistration(ctx context.Context, p receiving.EntradaPayload) (map[string]any, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	states    *dialog.Repo
	syncer    Receiving
	adminChat int64
	loc       *time.Location

	errMu      sync.Mutex
	lastNotice string

	// операции «Registrar»/«Confirmar», идущие сейчас, по ключу ноты
	inflight sync.Map
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, statesRepo *dialog.Repo, syncer Receiving, adminChatID int64, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		api: api, log: log, states: statesRepo,
		syncer: syncer, adminChat: adminChatID, loc: loc,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	notices := make(chan string, 8)
	unsubscribe := b.syncer.Subscribe(func(st receiving.State) {
		if msg := b.errorNotice(st); msg != "" {
			select {
			case notices <- msg:
			default:
			}
		}
	})
	defer unsubscribe()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-notices:
			b.notifyAdmin(msg)
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

// errorNotice возвращает текст для админа, только когда LastError сменился на новый.
func (b *Bot) errorNotice(st receiving.State) string {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	if st.LastError == "" || st.LastError == b.lastNotice {
		if st.LastError == "" && !st.Loading {
			b.lastNotice = ""
		}
		return ""
	}
	b.lastNotice = st.LastError
	return "⚠️ Falha na sincronização: " + st.LastError
}

// acquire занимает ключ на время мутации. ok=false, если по этому ключу уже что-то идёт.
func (b *Bot) acquire(key string) (release func(), ok bool) {
	if _, busy := b.inflight.LoadOrStore(key, struct{}{}); busy {
		return nil, false
	}
	return func() { b.inflight.Delete(key) }, true
}

func (b *Bot) notifyAdmin(text string) {
	if b.adminChat == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.adminChat, text))
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}
