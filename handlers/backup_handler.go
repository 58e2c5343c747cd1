package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/gaming-portal/services"
)

type BackupHandler struct {
	backupService services.BackupService
	logger        *slog.Logger
}

func NewBackupHandler(bs services.BackupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backupService: bs, logger: loggerOrDiscard(logger)}
}

// Export обрабатывает POST /backup и возвращает отчет по таблицам.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	report, err := h.backupService.Export(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	respond(w, r, h.logger, http.StatusOK, jsonResponse{"backup": report})
}
