package httpapi

import (
	"net/http"
	"strconv"
)

func (h *Handler) ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyNotifications")
	defer span.End()

	if h.notifications == nil {
		writeError(ctx, w, unavailable("notification inbox"))
		return
	}

	userID, _ := userIDFromContext(ctx)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.notifications.ListInbox(ctx, userID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list notifications failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]notificationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, notificationToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
