package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateSource: откуда /status берёт текущее состояние синхронизатора.
type StateSource interface {
	Snapshot() receiving.State
}

type Server struct {
	srv *http.Server
}

type statusView struct {
	PendingTotal int    `json:"pending_total"`
	PendingCount int    `json:"pending_count"`
	ReceiptTotal int    `json:"receipt_total"`
	ReceiptCount int    `json:"receipt_count"`
	Confirmed    int    `json:"confirmed_count"`
	Loading      bool   `json:"loading"`
	Creating     bool   `json:"creating"`
	Confirming   bool   `json:"confirming"`
	LastError    string `json:"last_error,omitempty"`
}

func New(addr string, exposeMetrics bool, state StateSource) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: NewHandler(exposeMetrics, state)}}
}

func NewHandler(exposeMetrics bool, state StateSource) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if state != nil {
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			st := state.Snapshot()
			v := statusView{
				PendingTotal: st.PendingTotal,
				PendingCount: len(st.PendingInvoices),
				ReceiptTotal: st.ReceiptTotal,
				ReceiptCount: len(st.ReceiptRecords),
				Loading:      st.Loading,
				Creating:     st.Creating,
				Confirming:   st.Confirming,
				LastError:    st.LastError,
			}
			for _, r := range st.ReceiptRecords {
				if r.Confirmed {
					v.Confirmed++
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		})
	}

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
