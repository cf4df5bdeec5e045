package usuario

import (
	"context"
	"net/http"

	"siab/internal/api/httputil"
	"siab/internal/domain"
	"siab/internal/pkg/logger"
)

// UsuarioService define el contrato que el handler espera de la capa de servicio.
type UsuarioService interface {
	Registrar(ctx context.Context, registro domain.RegistroUsuario) (domain.Usuario, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Handler agrupa los endpoints de cuentas y autenticación.
type Handler struct {
	Service UsuarioService
	Logger  logger.Logger
}

func NewHandler(svc UsuarioService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// RegistrarHandler atiende POST /v1/usuarios/registro.
func (h *Handler) RegistrarHandler(w http.ResponseWriter, r *http.Request) {
	var registro domain.RegistroUsuario
	if err := httputil.DecodeJSON(r, &registro); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	usuario, err := h.Service.Registrar(r.Context(), registro)
	httputil.Respond(w, r, h.Logger, usuario, err, http.StatusCreated)
}

// LoginHandler atiende POST /v1/usuarios/login y retorna el token JWT.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credenciales struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httputil.DecodeJSON(r, &credenciales); err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	token, err := h.Service.Login(r.Context(), credenciales.Email, credenciales.Password)
	if err != nil {
		httputil.Respond(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	httputil.Respond(w, r, h.Logger, map[string]string{"token": token}, nil, http.StatusOK)
}
