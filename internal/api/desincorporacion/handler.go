package desincorporacion

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/pkg/middleware"
)

// DesincorporacionService define el contrato que el handler espera de la capa de servicio.
type DesincorporacionService interface {
	Crear(ctx context.Context, sol domain.SolicitudDesincorporacion, solicitadaPor string) (domain.Desincorporacion, error)
	Obtener(ctx context.Context, id string) (domain.Desincorporacion, error)
	Aprobar(ctx context.Context, id, aprobadaPor string) error
	Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error
	Ejecutar(ctx context.Context, id, usuarioID string) (domain.Desincorporacion, error)
	Cancelar(ctx context.Context, id, usuarioID string) error
}

// Handler agrupa los endpoints del flujo de desincorporación.
type Handler struct {
	Service DesincorporacionService
	Logger  logger.Logger
}

func NewHandler(svc DesincorporacionService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusOK)
	}
	return claims, ok
}

// CrearDesincorporacionHandler atiende POST /v1/desincorporaciones.
func (h *Handler) CrearDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var sol domain.SolicitudDesincorporacion
	if err := httputil.DecodeJSON(r, &sol); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	desincorporacion, err := h.Service.Crear(r.Context(), sol, claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, desincorporacion, err, http.StatusCreated)
}

// ObtenerDesincorporacionHandler atiende GET /v1/desincorporaciones/{id}.
func (h *Handler) ObtenerDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	desincorporacion, err := h.Service.Obtener(r.Context(), r.PathValue("id"))
	httputil.Respond(w, r, h.Logger, desincorporacion, err, http.StatusOK)
}

// AprobarDesincorporacionHandler atiende POST /v1/desincorporaciones/{id}/aprobar.
// La aprobación no muta el bien; el retiro se concreta al ejecutar.
func (h *Handler) AprobarDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	err := h.Service.Aprobar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// RechazarDesincorporacionHandler atiende POST /v1/desincorporaciones/{id}/rechazar.
func (h *Handler) RechazarDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var payload struct {
		Observaciones string `json:"observaciones"`
	}
	_ = httputil.DecodeJSON(r, &payload)

	err := h.Service.Rechazar(r.Context(), r.PathValue("id"), claims.UsuarioID, payload.Observaciones)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// EjecutarDesincorporacionHandler atiende POST /v1/desincorporaciones/{id}/ejecutar.
func (h *Handler) EjecutarDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	desincorporacion, err := h.Service.Ejecutar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, desincorporacion, err, http.StatusOK)
}

// CancelarDesincorporacionHandler atiende DELETE /v1/desincorporaciones/{id}.
func (h *Handler) CancelarDesincorporacionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	err := h.Service.Cancelar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}
