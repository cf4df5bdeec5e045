package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/token"
)

// ContextKey es el tipo de las claves del contexto de la request. Se usa un
// tipo propio no exportable por valor para evitar colisiones con claves string.
type ContextKey int

const (
	// UserClaimsKey es la clave bajo la que se anexan las claims del usuario.
	UserClaimsKey ContextKey = iota
)

// UserClaims representa los datos del usuario extraídos del token JWT que se
// anexan al contexto de la request.
type UserClaims struct {
	UsuarioID string
	Rol       domain.RolUsuario
}

// TokenService define el contrato de validación que necesita el middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// GetUserClaimsFromContext recupera las claims del usuario desde el contexto.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// writeAuthError serializa un error de autenticación/autorización con el
// mismo sobre JSON que usan los handlers.
func writeAuthError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// NewAuthMiddleware crea un middleware que valida el JWT del header
// Authorization y anexa las claims (UsuarioID y Rol) al contexto.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
				writeAuthError(w, apperror.NewUnauthorizedError("Token de autorización ausente o malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(authHeader[7:])
			if err != nil {
				writeAuthError(w, apperror.NewUnauthorizedError("Token inválido o expirado."))
				return
			}

			userClaims := UserClaims{
				UsuarioID: claims.UsuarioID,
				Rol:       domain.RolUsuario(claims.Rol),
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole crea un middleware que exige un rol concreto. Debe montarse
// después de NewAuthMiddleware, que es quien anexa las claims.
func RequireRole(rol domain.RolUsuario) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, apperror.NewUnauthorizedError("Credenciales ausentes."))
				return
			}
			if claims.Rol != rol {
				writeAuthError(w, apperror.NewForbiddenError("No posee permisos para esta operación."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
