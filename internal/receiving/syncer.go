package receiving

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Remote: то, что синхронизатору нужно от удалённого сервиса.
type Remote interface {
	FetchPending(ctx context.Context) ([]PreEntradaItem, int, error)
	FetchReceipts(ctx context.Context) ([]EntradaNotaItem, int, error)
	Create(ctx context.Context, p EntradaPayload) (map[string]any, error)
	Confirm(ctx context.Context, p EntradaPayload) (map[string]any, error)
}

// Syncer владеет двумя коллекциями (пре-энтрады и энтрады) и флагами загрузки/сохранения.
// Коллекции заменяются целиком при каждой загрузке; локальных патчей нет.
//
// Флаги считаются счётчиками: Loading истинен, пока идёт хотя бы одна загрузка,
// даже если две загрузки пересекаются по времени.
type Syncer struct {
	remote Remote
	log    *slog.Logger

	mu           sync.Mutex
	pending      []PreEntradaItem
	pendingTotal int
	receipts     []EntradaNotaItem
	receiptTotal int
	loading      int
	creating     int
	confirming   int
	lastErr      string
	version      uint64

	// deliverMu держится от снимка до конца рассылки, чтобы подписчики
	// получали состояния в порядке версий.
	deliverMu sync.Mutex
	subMu     sync.Mutex
	subs    map[int]func(State)
	nextSub int

	startOnce sync.Once
}

func NewSyncer(remote Remote, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		remote: remote,
		log:    log,
		subs:   map[int]func(State){},
	}
}

// Start выполняет первичную загрузку обеих коллекций (один раз за жизнь Syncer).
func (s *Syncer) Start(ctx context.Context) {
	s.startOnce.Do(func() { s.Refresh(ctx) })
}

// Refresh запускает обе загрузки параллельно и ждёт обе.
func (s *Syncer) Refresh(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		s.LoadPendingInvoices(ctx)
		return nil
	})
	g.Go(func() error {
		s.LoadReceiptRecords(ctx)
		return nil
	})
	_ = g.Wait()
}

// LoadPendingInvoices перечитывает список пре-энтрад. Ошибки не возвращаются:
// список обнуляется, текст попадает в LastError.
func (s *Syncer) LoadPendingInvoices(ctx context.Context) {
	inflightOps.WithLabelValues(string(OpFetchPending)).Inc()
	defer inflightOps.WithLabelValues(string(OpFetchPending)).Dec()

	s.update(func() {
		s.loading++
		s.lastErr = ""
	})
	defer s.update(func() { s.loading-- })

	items, total, err := s.remote.FetchPending(ctx)
	if err != nil {
		s.log.Error("load pending invoices failed", "err", err)
		s.update(func() {
			s.pending = nil
			s.pendingTotal = 0
			s.lastErr = errorMessage(OpFetchPending, err)
		})
		return
	}
	s.update(func() {
		s.pending = items
		s.pendingTotal = total
	})
	s.log.Debug("pending invoices loaded", "count", len(items), "total", total)
}

// LoadReceiptRecords: то же для энтрад (GET /enrtada).
func (s *Syncer) LoadReceiptRecords(ctx context.Context) {
	inflightOps.WithLabelValues(string(OpFetchReceipts)).Inc()
	defer inflightOps.WithLabelValues(string(OpFetchReceipts)).Dec()

	s.update(func() {
		s.loading++
		s.lastErr = ""
	})
	defer s.update(func() { s.loading-- })

	items, total, err := s.remote.FetchReceipts(ctx)
	if err != nil {
		s.log.Error("load receipt records failed", "err", err)
		s.update(func() {
			s.receipts = nil
			s.receiptTotal = 0
			s.lastErr = errorMessage(OpFetchReceipts, err)
		})
		return
	}
	s.update(func() {
		s.receipts = items
		s.receiptTotal = total
	})
	s.log.Debug("receipt records loaded", "count", len(items), "total", total)
}

// CreateReceiptRegistration регистрирует приёмку. При успехе перечитывает обе коллекции
// до возврата; при ошибке ничего не перечитывает и возвращает *RemoteError.
func (s *Syncer) CreateReceiptRegistration(ctx context.Context, p EntradaPayload) (map[string]any, error) {
	return s.mutate(ctx, OpCreate, p, s.remote.Create, &s.creating)
}

// ConfirmReceiptRegistration подтверждает приёмку. Уже подтверждённую ноту
// отправит повторно: проверять должен вызывающий.
func (s *Syncer) ConfirmReceiptRegistration(ctx context.Context, p EntradaPayload) (map[string]any, error) {
	return s.mutate(ctx, OpConfirm, p, s.remote.Confirm, &s.confirming)
}

func (s *Syncer) mutate(
	ctx context.Context,
	op Op,
	p EntradaPayload,
	call func(context.Context, EntradaPayload) (map[string]any, error),
	flag *int,
) (map[string]any, error) {
	inflightOps.WithLabelValues(string(op)).Inc()
	defer inflightOps.WithLabelValues(string(op)).Dec()

	s.update(func() {
		*flag++
		s.lastErr = ""
	})
	defer s.update(func() { *flag-- })

	res, err := call(ctx, p)
	if err != nil {
		rerr := asRemoteError(op, err)
		s.log.Warn("receipt mutation failed", "op", op, "key", p.Key().String(), "err", rerr)
		s.update(func() { s.lastErr = rerr.Message })
		return nil, rerr
	}

	s.log.Info("receipt mutation applied", "op", op, "key", p.Key().String())
	s.Refresh(ctx)
	return res, nil
}

// Snapshot возвращает копию текущего состояния.
func (s *Syncer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe регистрирует обработчик изменений состояния. Возвращает функцию отписки.
// Обработчики вызываются по одному, в порядке State.Version. Обработчик не должен
// долго блокировать и не должен вызывать операции Syncer (Snapshot можно).
func (s *Syncer) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Syncer) update(fn func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	fn()
	s.version++
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	handlers := make([]func(State), 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.subMu.Unlock()

	for _, h := range handlers {
		h(st)
	}
}

func (s *Syncer) snapshotLocked() State {
	pending := make([]PreEntradaItem, len(s.pending))
	copy(pending, s.pending)
	receipts := make([]EntradaNotaItem, len(s.receipts))
	copy(receipts, s.receipts)
	return State{
		PendingInvoices: pending,
		PendingTotal:    s.pendingTotal,
		ReceiptRecords:  receipts,
		ReceiptTotal:    s.receiptTotal,
		Loading:         s.loading > 0,
		Creating:        s.creating > 0,
		Confirming:      s.confirming > 0,
		LastError:       s.lastErr,
		Version:         s.version,
	}
}

func asRemoteError(op Op, err error) *RemoteError {
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}
	return transportError(op, 0, nil, err)
}

func errorMessage(op Op, err error) string {
	return asRemoteError(op, err).Message
}
