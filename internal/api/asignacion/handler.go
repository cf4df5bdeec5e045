package asignacion

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/pkg/middleware"
)

// AsignacionService define el contrato que el handler espera de la capa de servicio.
type AsignacionService interface {
	Crear(ctx context.Context, sol domain.SolicitudAsignacion, emitidaPor string) (domain.Asignacion, error)
	BienesPendientes(ctx context.Context) ([]domain.Bien, error)
}

// Handler agrupa los endpoints del flujo de asignación.
type Handler struct {
	Service AsignacionService
	Logger  logger.Logger
}

func NewHandler(svc AsignacionService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CrearAsignacionHandler atiende POST /v1/asignaciones.
func (h *Handler) CrearAsignacionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusCreated)
		return
	}

	var sol domain.SolicitudAsignacion
	if err := httputil.DecodeJSON(r, &sol); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	asignacion, err := h.Service.Crear(ctx, sol, claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, asignacion, err, http.StatusCreated)
}

// BienesPendientesHandler atiende GET /v1/asignaciones/bienes-pendientes:
// bienes que aún no recibieron su asignación inicial.
func (h *Handler) BienesPendientesHandler(w http.ResponseWriter, r *http.Request) {
	bienes, err := h.Service.BienesPendientes(r.Context())
	if err == nil && bienes == nil {
		bienes = []domain.Bien{}
	}
	httputil.Respond(w, r, h.Logger, bienes, err, http.StatusOK)
}
