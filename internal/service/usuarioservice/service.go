package usuarioservice

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// UsuarioRepository define el contrato de persistencia de cuentas.
type UsuarioRepository interface {
	Guardar(ctx context.Context, u domain.Usuario) (domain.Usuario, error)
	BuscarPorEmail(ctx context.Context, email string) (domain.Usuario, error)
}

// TokenService es el contrato de la capa de tokens (internal/pkg/token).
type TokenService interface {
	GenerateToken(usuarioID string, rol string) (string, error)
}

// Service implementa registro y autenticación de usuarios.
type Service struct {
	repo     UsuarioRepository
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de usuarios.
func NewService(repo UsuarioRepository, tokenSvc TokenService, logger logger.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenSvc: tokenSvc,
		logger:   logger,
	}
}

// Registrar crea una nueva cuenta con rol USUARIO por defecto.
func (s *Service) Registrar(ctx context.Context, registro domain.RegistroUsuario) (domain.Usuario, error) {
	if registro.Email == "" || registro.Password == "" {
		return domain.Usuario{}, apperror.NewValidationError("El email y la contraseña son obligatorios.")
	}
	if len(registro.Password) < 8 {
		return domain.Usuario{}, apperror.NewValidationError("La contraseña debe tener al menos 8 caracteres.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(registro.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Usuario{}, apperror.NewInternalError("Falla al generar el hash de la contraseña.", err)
	}

	nuevo := domain.Usuario{
		Email:        registro.Email,
		Nombre:       registro.Nombre,
		PasswordHash: string(hash),
		Rol:          domain.RolUsuarioComun,
	}

	usuario, err := s.repo.Guardar(ctx, nuevo)
	if err != nil {
		return domain.Usuario{}, err
	}

	s.logger.Info("Usuario registrado.", map[string]interface{}{"id": usuario.ID})
	return usuario, nil
}

// Login verifica las credenciales y emite un JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewValidationError("El email y la contraseña son obligatorios.")
	}

	usuario, err := s.repo.BuscarPorEmail(ctx, email)
	if err != nil {
		// No distinguir "no existe" de "contraseña incorrecta".
		return "", apperror.NewUnauthorizedError("Credenciales inválidas.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciales inválidas.")
	}

	tokenStr, err := s.tokenSvc.GenerateToken(usuario.ID, string(usuario.Rol))
	if err != nil {
		return "", apperror.NewInternalError("Falla al emitir el token.", err)
	}

	s.logger.Info("Login exitoso.", map[string]interface{}{"usuario_id": usuario.ID})
	return tokenStr, nil
}
