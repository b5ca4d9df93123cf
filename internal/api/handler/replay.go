package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ayo6706/txledger/internal/api/middleware"
	"github.com/ayo6706/txledger/internal/ledger"
	"github.com/ayo6706/txledger/internal/report"
	"github.com/ayo6706/txledger/internal/service"
	"github.com/ayo6706/txledger/internal/txcsv"
	"go.uber.org/zap"
)

// Replayer is the part of the batch service the handler needs.
type Replayer interface {
	Replay(ctx context.Context, src service.OperationSource) (*ledger.Ledger, service.Summary, error)
}

// ReplayHandler runs an uploaded transaction file through a fresh ledger.
type ReplayHandler struct {
	svc       Replayer
	logger    *zap.Logger
	maxBytes  int64
	precision int32
}

func NewReplayHandler(svc Replayer, logger *zap.Logger, maxBytes int64, precision int32) *ReplayHandler {
	if logger == nil {
		logger = zap.L()
	}
	return &ReplayHandler{svc: svc, logger: logger, maxBytes: maxBytes, precision: precision}
}

// ReplayResponse is the JSON body returned by CreateReplay.
type ReplayResponse struct {
	Summary  service.Summary `json:"summary"`
	Accounts []report.Row    `json:"accounts"`
}

// CreateReplay handles POST /v1/replays.
func (h *ReplayHandler) CreateReplay(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	l, sum, err := h.svc.Replay(r.Context(), txcsv.NewReader(r.Body))
	if err != nil {
		h.respondReplayError(w, r, err)
		return
	}

	w.Header().Set("X-Operations-Applied", strconv.Itoa(sum.Applied))
	w.Header().Set("X-Operations-Rejected", strconv.Itoa(sum.Rejected))

	accounts := l.Accounts()
	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := report.NewCSVWriter(w, h.precision).WriteAccounts(r.Context(), accounts); err != nil {
			h.logger.Warn("write csv response failed", zap.Error(err))
		}
		return
	}

	RespondJSON(w, http.StatusOK, ReplayResponse{
		Summary:  sum,
		Accounts: report.Rows(accounts, h.precision),
	})
}

func (h *ReplayHandler) respondReplayError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	var parseErr *txcsv.ParseError
	var invErr *ledger.InvariantError

	switch {
	case errors.As(err, &maxErr):
		RespondError(w, r, http.StatusRequestEntityTooLarge, "request/too-large", "request body too large")
	case errors.As(err, &parseErr):
		RespondError(w, r, http.StatusBadRequest, "replay/invalid-input", parseErr.Error())
	case errors.As(err, &invErr), errors.Is(err, service.ErrLedgerImbalance):
		h.logger.Error("replay aborted by integrity check",
			zap.Error(err),
			zap.String("trace_id", middleware.TraceIDFromContext(r.Context())),
		)
		RespondError(w, r, http.StatusInternalServerError, "replay/integrity-failure", "ledger integrity check failed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		RespondError(w, r, http.StatusServiceUnavailable, "replay/cancelled", "replay cancelled")
	default:
		h.logger.Warn("replay input unreadable", zap.Error(err))
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "failed to read request body")
	}
}
