package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"siab/internal/api/asignacion"
	"siab/internal/api/auditoria"
	"siab/internal/api/bien"
	"siab/internal/api/desincorporacion"
	"siab/internal/api/referencia"
	"siab/internal/api/transferencia"
	"siab/internal/api/usuario"
	"siab/internal/domain"
	"siab/internal/pkg/middleware"
)

// Handlers agrupa los handlers ya inicializados por inyección de dependencias.
type Handlers struct {
	Usuario          *usuario.Handler
	Bien             *bien.Handler
	Asignacion       *asignacion.Handler
	Transferencia    *transferencia.Handler
	Desincorporacion *desincorporacion.Handler
	Referencia       *referencia.Handler
	Auditoria        *auditoria.Handler
}

// Middlewares agrupa los middlewares transversales que el router aplica.
type Middlewares struct {
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler
}

// NewRouter configura y retorna el router HTTP principal. Se usa el ServeMux
// estándar con los patrones método+path de Go 1.22.
func NewRouter(h Handlers, mw Middlewares) http.Handler {
	mux := http.NewServeMux()

	admin := middleware.RequireRole(domain.RolAdmin)

	// Rutas públicas.
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler())
	mux.HandleFunc("POST /v1/usuarios/registro", h.Usuario.RegistrarHandler)
	mux.HandleFunc("POST /v1/usuarios/login", h.Usuario.LoginHandler)

	// Registro de bienes. La escritura queda reservada al rol ADMIN.
	mux.Handle("GET /v1/bienes", mw.Auth(http.HandlerFunc(h.Bien.ListarBienesHandler)))
	mux.Handle("POST /v1/bienes", mw.Auth(admin(http.HandlerFunc(h.Bien.CrearBienHandler))))
	mux.Handle("GET /v1/bienes/{id}", mw.Auth(http.HandlerFunc(h.Bien.ObtenerBienHandler)))
	mux.Handle("PUT /v1/bienes/{id}", mw.Auth(admin(http.HandlerFunc(h.Bien.ActualizarBienHandler))))
	mux.Handle("DELETE /v1/bienes/{id}", mw.Auth(admin(http.HandlerFunc(h.Bien.EliminarBienHandler))))
	mux.Handle("GET /v1/bienes/{id}/transferencias", mw.Auth(http.HandlerFunc(h.Transferencia.HistorialPorBienHandler)))

	// Flujo de asignación inicial.
	mux.Handle("POST /v1/asignaciones", mw.Auth(admin(http.HandlerFunc(h.Asignacion.CrearAsignacionHandler))))
	mux.Handle("GET /v1/asignaciones/bienes-pendientes", mw.Auth(http.HandlerFunc(h.Asignacion.BienesPendientesHandler)))

	// Flujo de transferencia. Cualquier usuario autenticado solicita;
	// aprobar, rechazar, ejecutar y devolver son decisiones de ADMIN.
	mux.Handle("POST /v1/transferencias", mw.Auth(http.HandlerFunc(h.Transferencia.CrearTransferenciaHandler)))
	mux.Handle("GET /v1/transferencias/{id}", mw.Auth(http.HandlerFunc(h.Transferencia.ObtenerTransferenciaHandler)))
	mux.Handle("POST /v1/transferencias/{id}/aprobar", mw.Auth(admin(http.HandlerFunc(h.Transferencia.AprobarTransferenciaHandler))))
	mux.Handle("POST /v1/transferencias/{id}/rechazar", mw.Auth(admin(http.HandlerFunc(h.Transferencia.RechazarTransferenciaHandler))))
	mux.Handle("POST /v1/transferencias/{id}/ejecutar", mw.Auth(admin(http.HandlerFunc(h.Transferencia.EjecutarTransferenciaHandler))))
	mux.Handle("POST /v1/transferencias/{id}/devolver", mw.Auth(admin(http.HandlerFunc(h.Transferencia.DevolverTransferenciaHandler))))
	mux.Handle("DELETE /v1/transferencias/{id}", mw.Auth(http.HandlerFunc(h.Transferencia.CancelarTransferenciaHandler)))

	// Flujo de desincorporación.
	mux.Handle("POST /v1/desincorporaciones", mw.Auth(admin(http.HandlerFunc(h.Desincorporacion.CrearDesincorporacionHandler))))
	mux.Handle("GET /v1/desincorporaciones/{id}", mw.Auth(http.HandlerFunc(h.Desincorporacion.ObtenerDesincorporacionHandler)))
	mux.Handle("POST /v1/desincorporaciones/{id}/aprobar", mw.Auth(admin(http.HandlerFunc(h.Desincorporacion.AprobarDesincorporacionHandler))))
	mux.Handle("POST /v1/desincorporaciones/{id}/rechazar", mw.Auth(admin(http.HandlerFunc(h.Desincorporacion.RechazarDesincorporacionHandler))))
	mux.Handle("POST /v1/desincorporaciones/{id}/ejecutar", mw.Auth(admin(http.HandlerFunc(h.Desincorporacion.EjecutarDesincorporacionHandler))))
	mux.Handle("DELETE /v1/desincorporaciones/{id}", mw.Auth(http.HandlerFunc(h.Desincorporacion.CancelarDesincorporacionHandler)))

	// Catálogos de referencia.
	mux.Handle("GET /v1/ubicaciones", mw.Auth(http.HandlerFunc(h.Referencia.ListarUbicacionesHandler)))
	mux.Handle("GET /v1/ubicaciones/{id}", mw.Auth(http.HandlerFunc(h.Referencia.ObtenerUbicacionHandler)))
	mux.Handle("POST /v1/ubicaciones", mw.Auth(admin(http.HandlerFunc(h.Referencia.CrearUbicacionHandler))))
	mux.Handle("GET /v1/responsables", mw.Auth(http.HandlerFunc(h.Referencia.ListarResponsablesHandler)))
	mux.Handle("GET /v1/responsables/{id}", mw.Auth(http.HandlerFunc(h.Referencia.ObtenerResponsableHandler)))
	mux.Handle("POST /v1/responsables", mw.Auth(admin(http.HandlerFunc(h.Referencia.CrearResponsableHandler))))
	mux.Handle("GET /v1/categorias", mw.Auth(http.HandlerFunc(h.Referencia.ListarCategoriasHandler)))
	mux.Handle("POST /v1/categorias", mw.Auth(admin(http.HandlerFunc(h.Referencia.CrearCategoriaHandler))))

	// Historial de auditoría.
	mux.Handle("GET /v1/auditoria/{entidad}/{id}/historial", mw.Auth(http.HandlerFunc(h.Auditoria.HistorialHandler)))

	var handler http.Handler = mux
	if mw.RateLimit != nil {
		handler = mw.RateLimit(handler)
	}
	return handler
}

// PingHandler responde el health check básico.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
