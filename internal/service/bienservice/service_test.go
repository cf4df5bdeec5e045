package bienservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"siab/internal/domain"
	"siab/internal/pkg/logger"
	"siab/internal/service/bienservice"
)

// MockBienRepository es una implementación mock de la interfaz BienRepository.
type MockBienRepository struct {
	mock.Mock
}

func (m *MockBienRepository) Crear(ctx context.Context, bien domain.Bien) (domain.Bien, error) {
	args := m.Called(ctx, bien)
	return args.Get(0).(domain.Bien), args.Error(1)
}

func (m *MockBienRepository) BuscarPorID(ctx context.Context, id string) (domain.Bien, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Bien), args.Error(1)
}

func (m *MockBienRepository) Listar(ctx context.Context, filtro domain.FiltroBienes) ([]domain.Bien, error) {
	args := m.Called(ctx, filtro)
	return args.Get(0).([]domain.Bien), args.Error(1)
}

func (m *MockBienRepository) Actualizar(ctx context.Context, id string, cambios domain.ActualizacionBien) (domain.Bien, error) {
	args := m.Called(ctx, id, cambios)
	return args.Get(0).(domain.Bien), args.Error(1)
}

func (m *MockBienRepository) EliminarLogico(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReferenciaRepository es una implementación mock de la interfaz ReferenciaRepository.
type MockReferenciaRepository struct {
	mock.Mock
}

func (m *MockReferenciaRepository) ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Ubicacion), args.Error(1)
}

func (m *MockReferenciaRepository) ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Responsable), args.Error(1)
}

// MockAuditor es una implementación mock de la interfaz Auditor.
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Registrar(ctx context.Context, entrada domain.Auditoria) error {
	args := m.Called(ctx, entrada)
	return args.Error(0)
}

func nuevoServicio() (*bienservice.Service, *MockBienRepository, *MockReferenciaRepository, *MockAuditor) {
	mockRepo := new(MockBienRepository)
	mockRefs := new(MockReferenciaRepository)
	mockAuditor := new(MockAuditor)
	svc := bienservice.NewService(mockRepo, mockRefs, mockAuditor, logger.NewLogger("debug"))
	return svc, mockRepo, mockRefs, mockAuditor
}

func bienValido() domain.Bien {
	return domain.Bien{
		CodigoInterno: "BN-2025-0001",
		Descripcion:   "Monitor de signos vitales",
		UbicacionID:   uuid.New().String(),
		ResponsableID: uuid.New().String(),
		CategoriaID:   uuid.New().String(),
	}
}

// TestCrearBien_Exito_AplicaDefaults verifica el ingreso con estado y
// condición por defecto.
func TestCrearBien_Exito_AplicaDefaults(t *testing.T) {
	svc, mockRepo, mockRefs, mockAuditor := nuevoServicio()

	bien := bienValido()
	usuarioID := uuid.New().String()
	mockRefs.On("ObtenerUbicacion", mock.Anything, bien.UbicacionID).Return(domain.Ubicacion{}, nil)
	mockRefs.On("ObtenerResponsable", mock.Anything, bien.ResponsableID).Return(domain.Responsable{}, nil)
	mockRepo.On("Crear", mock.Anything, mock.MatchedBy(func(b domain.Bien) bool {
		return b.Estado == domain.BienActivo && b.Condicion == domain.CondicionBuena && b.CreadoPor == usuarioID
	})).Return(domain.Bien{ID: uuid.New().String(), CodigoInterno: bien.CodigoInterno, Estado: domain.BienActivo}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	creado, err := svc.Crear(context.Background(), bien, usuarioID)

	assert.NoError(t, err)
	assert.Equal(t, bien.CodigoInterno, creado.CodigoInterno)
	mockRepo.AssertExpectations(t)
}

// TestCrearBien_Fail_EstadoDeFlujo: un bien no puede ingresar directamente en
// un estado que solo los flujos producen.
func TestCrearBien_Fail_EstadoDeFlujo(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	bien := bienValido()
	bien.Estado = domain.BienDesincorporado

	_, err := svc.Crear(context.Background(), bien, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ACTIVO o INACTIVO")
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestCrearBien_Fail_UbicacionInexistente propaga el NotFound de la referencia.
func TestCrearBien_Fail_UbicacionInexistente(t *testing.T) {
	svc, mockRepo, mockRefs, _ := nuevoServicio()

	bien := bienValido()
	mockRefs.On("ObtenerUbicacion", mock.Anything, bien.UbicacionID).Return(domain.Ubicacion{},
		assert.AnError)

	_, err := svc.Crear(context.Background(), bien, uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestListarBienes_Fail_FiltroInvalido valida los enums del filtro.
func TestListarBienes_Fail_FiltroInvalido(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	_, err := svc.Listar(context.Background(), domain.FiltroBienes{Estado: "ROTO"})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Listar", mock.Anything, mock.Anything)
}

// TestActualizarBien_Exito aplica cambios descriptivos.
func TestActualizarBien_Exito(t *testing.T) {
	svc, mockRepo, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	marca := "Mindray"
	cambios := domain.ActualizacionBien{Marca: &marca}
	mockRepo.On("Actualizar", mock.Anything, id, cambios).Return(domain.Bien{ID: id, Marca: marca}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	actualizado, err := svc.Actualizar(context.Background(), id, cambios, uuid.New().String())

	assert.NoError(t, err)
	assert.Equal(t, marca, actualizado.Marca)
	mockRepo.AssertExpectations(t)
}

// TestEliminarBien_Fail_YaDesincorporado: la baja directa no es repetible.
func TestEliminarBien_Fail_YaDesincorporado(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Bien{ID: id, Estado: domain.BienDesincorporado}, nil)

	err := svc.Eliminar(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "EliminarLogico", mock.Anything, mock.Anything)
}

// TestEliminarBien_Exito marca al bien como retirado sin borrar la fila.
func TestEliminarBien_Exito(t *testing.T) {
	svc, mockRepo, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Bien{ID: id, Estado: domain.BienActivo}, nil)
	mockRepo.On("EliminarLogico", mock.Anything, id).Return(nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	err := svc.Eliminar(context.Background(), id, uuid.New().String())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
