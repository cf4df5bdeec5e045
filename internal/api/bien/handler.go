package bien

import (
	"context"
	"net/http"
	"strconv"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/pkg/middleware"
)

// BienService define el contrato que el handler espera de la capa de servicio.
type BienService interface {
	Crear(ctx context.Context, bien domain.Bien, creadoPor string) (domain.Bien, error)
	Obtener(ctx context.Context, id string) (domain.Bien, error)
	Listar(ctx context.Context, filtro domain.FiltroBienes) ([]domain.Bien, error)
	Actualizar(ctx context.Context, id string, cambios domain.ActualizacionBien, usuarioID string) (domain.Bien, error)
	Eliminar(ctx context.Context, id, usuarioID string) error
}

// Handler agrupa los endpoints del registro de bienes.
type Handler struct {
	Service BienService
	Logger  logger.Logger
}

func NewHandler(svc BienService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CrearBienHandler atiende POST /v1/bienes.
func (h *Handler) CrearBienHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusCreated)
		return
	}

	var bien domain.Bien
	if err := httputil.DecodeJSON(r, &bien); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	creado, err := h.Service.Crear(ctx, bien, claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, creado, err, http.StatusCreated)
}

// ObtenerBienHandler atiende GET /v1/bienes/{id}.
func (h *Handler) ObtenerBienHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewValidationError("El ID del bien es obligatorio."), http.StatusOK)
		return
	}

	bien, err := h.Service.Obtener(r.Context(), id)
	httputil.Respond(w, r, h.Logger, bien, err, http.StatusOK)
}

// ListarBienesHandler atiende GET /v1/bienes con filtros por query string.
func (h *Handler) ListarBienesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filtro := domain.FiltroBienes{
		UbicacionID: q.Get("ubicacion_id"),
		CategoriaID: q.Get("categoria_id"),
		Estado:      domain.EstadoBien(q.Get("estado")),
		Condicion:   domain.CondicionFisica(q.Get("condicion")),
		Texto:       q.Get("q"),
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filtro.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filtro.Limit = n
		}
	}

	bienes, err := h.Service.Listar(r.Context(), filtro)
	if err == nil && bienes == nil {
		bienes = []domain.Bien{}
	}
	httputil.Respond(w, r, h.Logger, bienes, err, http.StatusOK)
}

// ActualizarBienHandler atiende PUT /v1/bienes/{id}. Solo acepta campos
// descriptivos; la custodia y el estado van por los flujos.
func (h *Handler) ActualizarBienHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusOK)
		return
	}

	id := r.PathValue("id")
	var cambios domain.ActualizacionBien
	if err := httputil.DecodeJSON(r, &cambios); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	bien, err := h.Service.Actualizar(ctx, id, cambios, claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, bien, err, http.StatusOK)
}

// EliminarBienHandler atiende DELETE /v1/bienes/{id} (baja lógica directa).
func (h *Handler) EliminarBienHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		httputil.Respond(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Sesión no identificada."), http.StatusNoContent)
		return
	}

	err := h.Service.Eliminar(ctx, r.PathValue("id"), claims.UsuarioID)
	httputil.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}
