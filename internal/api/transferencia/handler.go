package transferencia

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/pkg/middleware"
)

// TransferenciaService define el contrato que el handler espera de la capa de servicio.
type TransferenciaService interface {
	Crear(ctx context.Context, sol domain.SolicitudTransferencia, solicitadaPor string) (domain.Transferencia, error)
	Obtener(ctx context.Context, id string) (domain.Transferencia, error)
	HistorialPorBien(ctx context.Context, bienID string) ([]domain.Transferencia, error)
	Aprobar(ctx context.Context, id, aprobadaPor string) (domain.Transferencia, error)
	Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error
	Ejecutar(ctx context.Context, id, usuarioID string) (domain.Transferencia, error)
	Cancelar(ctx context.Context, id, usuarioID string) error
	Devolver(ctx context.Context, id, usuarioID string) (domain.Transferencia, error)
}

// Handler agrupa los endpoints del flujo de transferencia.
type Handler struct {
	Service TransferenciaService
	Logger  logger.Logger
}

func NewHandler(svc TransferenciaService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// claims extrae la identidad del contexto; responde 401 si falta.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusOK)
	}
	return claims, ok
}

// CrearTransferenciaHandler atiende POST /v1/transferencias.
func (h *Handler) CrearTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var sol domain.SolicitudTransferencia
	if err := httputil.DecodeJSON(r, &sol); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	transferencia, err := h.Service.Crear(r.Context(), sol, claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, transferencia, err, http.StatusCreated)
}

// ObtenerTransferenciaHandler atiende GET /v1/transferencias/{id}.
func (h *Handler) ObtenerTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	transferencia, err := h.Service.Obtener(r.Context(), r.PathValue("id"))
	httputil.Respond(w, r, h.Logger, transferencia, err, http.StatusOK)
}

// HistorialPorBienHandler atiende GET /v1/bienes/{id}/transferencias.
func (h *Handler) HistorialPorBienHandler(w http.ResponseWriter, r *http.Request) {
	historial, err := h.Service.HistorialPorBien(r.Context(), r.PathValue("id"))
	if err == nil && historial == nil {
		historial = []domain.Transferencia{}
	}
	httputil.Respond(w, r, h.Logger, historial, err, http.StatusOK)
}

// AprobarTransferenciaHandler atiende POST /v1/transferencias/{id}/aprobar.
func (h *Handler) AprobarTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	transferencia, err := h.Service.Aprobar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, transferencia, err, http.StatusOK)
}

// RechazarTransferenciaHandler atiende POST /v1/transferencias/{id}/rechazar.
// El cuerpo admite observaciones del revisor.
func (h *Handler) RechazarTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var payload struct {
		Observaciones string `json:"observaciones"`
	}
	// El cuerpo es opcional; un rechazo sin observaciones es válido.
	_ = httputil.DecodeJSON(r, &payload)

	err := h.Service.Rechazar(r.Context(), r.PathValue("id"), claims.UsuarioID, payload.Observaciones)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// EjecutarTransferenciaHandler atiende POST /v1/transferencias/{id}/ejecutar.
func (h *Handler) EjecutarTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	transferencia, err := h.Service.Ejecutar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, transferencia, err, http.StatusOK)
}

// CancelarTransferenciaHandler atiende DELETE /v1/transferencias/{id}.
// Solo el solicitante original puede cancelar, y solo en estado pendiente.
func (h *Handler) CancelarTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	err := h.Service.Cancelar(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// DevolverTransferenciaHandler atiende POST /v1/transferencias/{id}/devolver:
// registra el retorno de una transferencia temporal.
func (h *Handler) DevolverTransferenciaHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	transferencia, err := h.Service.Devolver(r.Context(), r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, transferencia, err, http.StatusOK)
}
