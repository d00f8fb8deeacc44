package handler

import (
	"context"
	"iter"
	"net/http"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/usecase"
)

// HistoryService streams the history of an owner.
type HistoryService interface {
	Entries(ctx context.Context, ownerID string) iter.Seq2[usecase.HistoryEntry, error]
}

// HistoryHandler serves transaction history.
type HistoryHandler struct {
	historyUC HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyUC HistoryService) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// List returns the caller's history, newest first. ?limit=N stops reading the
// ledger after N entries; zero or missing means everything.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 0)

	entries := make([]*dto.HistoryEntryResponse, 0)
	for entry, err := range h.historyUC.Entries(r.Context(), owner) {
		if err != nil {
			respondError(w, "failed to read history", err)
			return
		}

		entries = append(entries, dto.HistoryEntryFromUseCase(entry))
		if limit > 0 && len(entries) >= limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, dto.HistoryResponse{Entries: entries})
}
