package auditoria

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	"siab/internal/pkg/logger"
)

// AuditoriaService define el contrato que el handler espera de la capa de servicio.
type AuditoriaService interface {
	Historial(ctx context.Context, entidad, entidadID string) ([]domain.Auditoria, error)
}

// Handler expone la consulta del historial de auditoría.
type Handler struct {
	Service AuditoriaService
	Logger  logger.Logger
}

func NewHandler(svc AuditoriaService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// HistorialHandler atiende GET /v1/auditoria/{entidad}/{id}/historial.
func (h *Handler) HistorialHandler(w http.ResponseWriter, r *http.Request) {
	entidad := r.PathValue("entidad")
	entidadID := r.PathValue("id")

	historial, err := h.Service.Historial(r.Context(), entidad, entidadID)
	if err == nil && historial == nil {
		historial = []domain.Auditoria{}
	}
	httputil.Respond(w, r, h.Logger, historial, err, http.StatusOK)
}
