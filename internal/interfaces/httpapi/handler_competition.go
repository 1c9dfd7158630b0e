package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

func (h *Handler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompletion")
	defer span.End()

	if h.completion == nil {
		writeError(ctx, w, unavailable("completion detector"))
		return
	}

	ref, err := competitionRefFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	complete, err := h.completion.IsComplete(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "completion check failed", "competition", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, completionDTO{
		CompetitionType: string(ref.Type),
		CompetitionID:   ref.ID,
		Complete:        complete,
	})
}

func competitionRefFromPath(r *http.Request) (competition.Ref, error) {
	competitionType, err := competition.ParseType(r.PathValue("competitionType"))
	if err != nil {
		return competition.Ref{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	if competitionID == "" {
		return competition.Ref{}, fmt.Errorf("%w: competition id is required", usecase.ErrInvalidInput)
	}
	return competition.Ref{Type: competitionType, ID: competitionID}, nil
}
