package usuarioservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/service/usuarioservice"
)

// MockUsuarioRepository es una implementación mock de la interfaz UsuarioRepository.
type MockUsuarioRepository struct {
	mock.Mock
}

func (m *MockUsuarioRepository) Guardar(ctx context.Context, u domain.Usuario) (domain.Usuario, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) BuscarPorEmail(ctx context.Context, email string) (domain.Usuario, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

// MockTokenService es una implementación mock de la interfaz TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(usuarioID string, rol string) (string, error) {
	args := m.Called(usuarioID, rol)
	return args.String(0), args.Error(1)
}

// TestRegistrar_Exito verifica el registro con rol USUARIO por defecto y
// contraseña con hash bcrypt.
func TestRegistrar_Exito(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	mockTokens := new(MockTokenService)
	svc := usuarioservice.NewService(mockRepo, mockTokens, logger.NewLogger("debug"))

	registro := domain.RegistroUsuario{
		Email:    "operador@hospital.gob.ve",
		Nombre:   "Operador de Bienes",
		Password: "clave-muy-larga",
	}

	mockRepo.On("Guardar", mock.Anything, mock.MatchedBy(func(u domain.Usuario) bool {
		if u.Rol != domain.RolUsuarioComun || u.Email != registro.Email {
			return false
		}
		// El hash debe verificar contra la contraseña original.
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(registro.Password)) == nil
	})).Return(domain.Usuario{ID: uuid.New().String(), Email: registro.Email, Rol: domain.RolUsuarioComun}, nil)

	usuario, err := svc.Registrar(context.Background(), registro)

	assert.NoError(t, err)
	assert.Equal(t, domain.RolUsuarioComun, usuario.Rol)
	mockRepo.AssertExpectations(t)
}

// TestRegistrar_Fail_PasswordCorta valida el largo mínimo.
func TestRegistrar_Fail_PasswordCorta(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := usuarioservice.NewService(mockRepo, new(MockTokenService), logger.NewLogger("debug"))

	_, err := svc.Registrar(context.Background(), domain.RegistroUsuario{
		Email:    "corta@hospital.gob.ve",
		Password: "abc",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "al menos 8 caracteres")
	mockRepo.AssertNotCalled(t, "Guardar", mock.Anything, mock.Anything)
}

// TestLogin_Exito verifica la emisión del token con credenciales correctas.
func TestLogin_Exito(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	mockTokens := new(MockTokenService)
	svc := usuarioservice.NewService(mockRepo, mockTokens, logger.NewLogger("debug"))

	password := "clave-muy-larga"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	usuarioID := uuid.New().String()

	mockRepo.On("BuscarPorEmail", mock.Anything, "admin@hospital.gob.ve").Return(domain.Usuario{
		ID: usuarioID, Email: "admin@hospital.gob.ve", PasswordHash: string(hash), Rol: domain.RolAdmin,
	}, nil)
	mockTokens.On("GenerateToken", usuarioID, string(domain.RolAdmin)).Return("jwt-firmado", nil)

	token, err := svc.Login(context.Background(), "admin@hospital.gob.ve", password)

	assert.NoError(t, err)
	assert.Equal(t, "jwt-firmado", token)
	mockTokens.AssertExpectations(t)
}

// TestLogin_Fail_PasswordIncorrecta responde con el mismo mensaje genérico
// que el usuario inexistente.
func TestLogin_Fail_PasswordIncorrecta(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := usuarioservice.NewService(mockRepo, new(MockTokenService), logger.NewLogger("debug"))

	hash, _ := bcrypt.GenerateFromPassword([]byte("la-correcta"), bcrypt.MinCost)
	mockRepo.On("BuscarPorEmail", mock.Anything, "admin@hospital.gob.ve").Return(domain.Usuario{
		ID: uuid.New().String(), PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), "admin@hospital.gob.ve", "otra-clave")

	var unauthErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauthErr)
	assert.Equal(t, "Credenciales inválidas.", err.Error())
}

// TestLogin_Fail_UsuarioInexistente no distingue la cuenta ausente.
func TestLogin_Fail_UsuarioInexistente(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := usuarioservice.NewService(mockRepo, new(MockTokenService), logger.NewLogger("debug"))

	mockRepo.On("BuscarPorEmail", mock.Anything, "nadie@hospital.gob.ve").Return(domain.Usuario{},
		apperror.NewNotFoundError("no existe"))

	_, err := svc.Login(context.Background(), "nadie@hospital.gob.ve", "cualquier-clave")

	var unauthErr *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauthErr)
	assert.Equal(t, "Credenciales inválidas.", err.Error())
}
