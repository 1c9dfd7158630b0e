package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	availability  *usecase.AvailabilityResolver
	completion    *usecase.CompletionDetector
	ingestion     *usecase.LiveStatsIngestionPipeline
	sweep         *usecase.SettlementSweep
	settleJobs    *usecase.SettleJobHandler
	notifications *usecase.NotificationService
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	availability *usecase.AvailabilityResolver,
	completion *usecase.CompletionDetector,
	ingestion *usecase.LiveStatsIngestionPipeline,
	sweep *usecase.SettlementSweep,
	settleJobs *usecase.SettleJobHandler,
	notifications *usecase.NotificationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		availability:  availability,
		completion:    completion,
		ingestion:     ingestion,
		sweep:         sweep,
		settleJobs:    settleJobs,
		notifications: notifications,
		logger:        logger.Named("httpapi"),
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSON rejects unknown fields. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func unavailable(what string) error {
	return fmt.Errorf("%w: %s is not configured", usecase.ErrDependencyUnavailable, what)
}
