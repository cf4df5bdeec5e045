package referencia

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	"siab/internal/pkg/logger"
)

// ReferenciaService define el contrato que el handler espera de la capa de servicio.
type ReferenciaService interface {
	ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error)
	ListarUbicaciones(ctx context.Context) ([]domain.Ubicacion, error)
	CrearUbicacion(ctx context.Context, u domain.Ubicacion) (domain.Ubicacion, error)
	ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error)
	ListarResponsables(ctx context.Context) ([]domain.Responsable, error)
	CrearResponsable(ctx context.Context, resp domain.Responsable) (domain.Responsable, error)
	ListarCategorias(ctx context.Context) ([]domain.Categoria, error)
	CrearCategoria(ctx context.Context, c domain.Categoria) (domain.Categoria, error)
}

// Handler agrupa los endpoints de los catálogos de referencia.
type Handler struct {
	Service ReferenciaService
	Logger  logger.Logger
}

func NewHandler(svc ReferenciaService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ListarUbicacionesHandler atiende GET /v1/ubicaciones.
func (h *Handler) ListarUbicacionesHandler(w http.ResponseWriter, r *http.Request) {
	ubicaciones, err := h.Service.ListarUbicaciones(r.Context())
	if err == nil && ubicaciones == nil {
		ubicaciones = []domain.Ubicacion{}
	}
	httputil.Respond(w, r, h.Logger, ubicaciones, err, http.StatusOK)
}

// ObtenerUbicacionHandler atiende GET /v1/ubicaciones/{id}.
func (h *Handler) ObtenerUbicacionHandler(w http.ResponseWriter, r *http.Request) {
	ubicacion, err := h.Service.ObtenerUbicacion(r.Context(), r.PathValue("id"))
	httputil.Respond(w, r, h.Logger, ubicacion, err, http.StatusOK)
}

// CrearUbicacionHandler atiende POST /v1/ubicaciones.
func (h *Handler) CrearUbicacionHandler(w http.ResponseWriter, r *http.Request) {
	var ubicacion domain.Ubicacion
	if err := httputil.DecodeJSON(r, &ubicacion); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	creada, err := h.Service.CrearUbicacion(r.Context(), ubicacion)
	httputil.Respond(w, r, h.Logger, creada, err, http.StatusCreated)
}

// ListarResponsablesHandler atiende GET /v1/responsables.
func (h *Handler) ListarResponsablesHandler(w http.ResponseWriter, r *http.Request) {
	responsables, err := h.Service.ListarResponsables(r.Context())
	if err == nil && responsables == nil {
		responsables = []domain.Responsable{}
	}
	httputil.Respond(w, r, h.Logger, responsables, err, http.StatusOK)
}

// ObtenerResponsableHandler atiende GET /v1/responsables/{id}.
func (h *Handler) ObtenerResponsableHandler(w http.ResponseWriter, r *http.Request) {
	responsable, err := h.Service.ObtenerResponsable(r.Context(), r.PathValue("id"))
	httputil.Respond(w, r, h.Logger, responsable, err, http.StatusOK)
}

// CrearResponsableHandler atiende POST /v1/responsables.
func (h *Handler) CrearResponsableHandler(w http.ResponseWriter, r *http.Request) {
	var responsable domain.Responsable
	if err := httputil.DecodeJSON(r, &responsable); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	creado, err := h.Service.CrearResponsable(r.Context(), responsable)
	httputil.Respond(w, r, h.Logger, creado, err, http.StatusCreated)
}

// ListarCategoriasHandler atiende GET /v1/categorias.
func (h *Handler) ListarCategoriasHandler(w http.ResponseWriter, r *http.Request) {
	categorias, err := h.Service.ListarCategorias(r.Context())
	if err == nil && categorias == nil {
		categorias = []domain.Categoria{}
	}
	httputil.Respond(w, r, h.Logger, categorias, err, http.StatusOK)
}

// CrearCategoriaHandler atiende POST /v1/categorias.
func (h *Handler) CrearCategoriaHandler(w http.ResponseWriter, r *http.Request) {
	var categoria domain.Categoria
	if err := httputil.DecodeJSON(r, &categoria); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	creada, err := h.Service.CrearCategoria(r.Context(), categoria)
	httputil.Respond(w, r, h.Logger, creada, err, http.StatusCreated)
}
