package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

// RunIngestLiveJob runs one live stats pass. Per-fixture failures are part
// of the report and still answer 200.
func (h *Handler) RunIngestLiveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestLiveJob")
	defer span.End()

	if h.ingestion == nil {
		writeError(ctx, w, unavailable("ingestion pipeline"))
		return
	}

	report, err := h.ingestion.Run(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run ingest live job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

// RunSettleJob is the QStash target for queued settlements. A skipped
// outcome answers 200 so the queue does not redeliver it.
func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	if h.settleJobs == nil {
		writeError(ctx, w, unavailable("settlement engine"))
		return
	}

	var payload usecase.SettleJobPayload
	if err := decodeJSON(r, &payload, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.settleJobs.Handle(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "run settle job failed",
			"competition_type", payload.CompetitionType,
			"competition_id", payload.CompetitionID,
			"dispatch_id", payload.DispatchID,
			"retryable", usecase.IsRetryable(err),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementToDTO(payload, outcome))
}

func (h *Handler) RunSettlementSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettlementSweepJob")
	defer span.End()

	if h.sweep == nil {
		writeError(ctx, w, unavailable("settlement sweep"))
		return
	}

	dispatched := h.sweep.Run(ctx)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"dispatched": dispatched})
}
