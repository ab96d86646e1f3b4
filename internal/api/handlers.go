package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dbadvisor.io/chat-gateway/internal/core"
)

type APIHandler struct {
	chatService    *core.ChatService
	maxUploadBytes int64
}

func NewAPIHandler(cs *core.ChatService, maxUploadBytes int64) *APIHandler {
	return &APIHandler{chatService: cs, maxUploadBytes: maxUploadBytes}
}

// ChatHandler serves POST /chat for both JSON and form submissions.
// Validation failures are answered with a status and {"detail": ...};
// everything after validation is answered with 200 and a ChatResponse.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	req, err := decodeChatRequest(r, h.maxUploadBytes)
	if err != nil {
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			reqErr = badRequest(err.Error())
		}
		slog.InfoContext(r.Context(), "rejected chat request",
			"request_id", RequestIDFromContext(r.Context()),
			"status", reqErr.Status,
			"detail", reqErr.Detail,
		)
		writeDetail(w, reqErr.Status, reqErr.Detail)
		return
	}

	result := h.chatService.ProcessTurn(r.Context(), req)
	if result.Err != nil {
		slog.ErrorContext(r.Context(), "chat turn failed",
			"request_id", RequestIDFromContext(r.Context()),
			"history_length", len(req.History),
			"error", result.Err,
		)
	}

	writeJSON(w, http.StatusOK, result.Response())
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
