package desincorporacionservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/service/desincorporacionservice"
)

// MockDesincorporacionRepository es una implementación mock de la interfaz DesincorporacionRepository.
type MockDesincorporacionRepository struct {
	mock.Mock
}

func (m *MockDesincorporacionRepository) Crear(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.Desincorporacion), args.Error(1)
}

func (m *MockDesincorporacionRepository) BuscarPorID(ctx context.Context, id string) (domain.Desincorporacion, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Desincorporacion), args.Error(1)
}

func (m *MockDesincorporacionRepository) ExistePendientePorBien(ctx context.Context, bienID string) (bool, error) {
	args := m.Called(ctx, bienID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDesincorporacionRepository) Aprobar(ctx context.Context, id, aprobadaPor string) error {
	args := m.Called(ctx, id, aprobadaPor)
	return args.Error(0)
}

func (m *MockDesincorporacionRepository) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	args := m.Called(ctx, id, aprobadaPor, observaciones)
	return args.Error(0)
}

func (m *MockDesincorporacionRepository) Ejecutar(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.Desincorporacion), args.Error(1)
}

func (m *MockDesincorporacionRepository) Eliminar(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBienRepository es una implementación mock de la interfaz BienRepository.
type MockBienRepository struct {
	mock.Mock
}

func (m *MockBienRepository) BuscarPorID(ctx context.Context, id string) (domain.Bien, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Bien), args.Error(1)
}

// MockAuditor es una implementación mock de la interfaz Auditor.
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Registrar(ctx context.Context, entrada domain.Auditoria) error {
	args := m.Called(ctx, entrada)
	return args.Error(0)
}

func nuevoServicio() (*desincorporacionservice.Service, *MockDesincorporacionRepository, *MockBienRepository, *MockAuditor) {
	mockRepo := new(MockDesincorporacionRepository)
	mockBienes := new(MockBienRepository)
	mockAuditor := new(MockAuditor)
	svc := desincorporacionservice.NewService(mockRepo, mockBienes, mockAuditor, logger.NewLogger("debug"))
	return svc, mockRepo, mockBienes, mockAuditor
}

func solicitudValida(bienID string) domain.SolicitudDesincorporacion {
	return domain.SolicitudDesincorporacion{
		BienID:      bienID,
		Motivo:      domain.MotivoObsolescencia,
		Descripcion: "Equipo fuera de soporte del fabricante",
	}
}

// TestCrearDesincorporacion_Exito cubre el camino feliz de la solicitud.
func TestCrearDesincorporacion_Exito(t *testing.T) {
	svc, mockRepo, mockBienes, mockAuditor := nuevoServicio()

	bienID := uuid.New().String()
	usuarioID := uuid.New().String()
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{ID: bienID, Estado: domain.BienActivo}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(false, nil)
	mockRepo.On("Crear", mock.Anything, mock.MatchedBy(func(d domain.Desincorporacion) bool {
		return d.BienID == bienID && d.SolicitadaPor == usuarioID
	})).Return(domain.Desincorporacion{
		ID: uuid.New().String(), BienID: bienID, Estado: domain.DesincorporacionPendiente,
	}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	creada, err := svc.Crear(context.Background(), solicitudValida(bienID), usuarioID)

	assert.NoError(t, err)
	assert.Equal(t, domain.DesincorporacionPendiente, creada.Estado)
	mockRepo.AssertExpectations(t)
}

// TestCrearDesincorporacion_Fail_MotivoDesconocido valida la taxonomía de motivos.
func TestCrearDesincorporacion_Fail_MotivoDesconocido(t *testing.T) {
	svc, _, mockBienes, _ := nuevoServicio()

	sol := solicitudValida(uuid.New().String())
	sol.Motivo = "EXTRAVIO"

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Motivo de desincorporación desconocido")
	mockBienes.AssertNotCalled(t, "BuscarPorID", mock.Anything, mock.Anything)
}

// TestCrearDesincorporacion_Fail_ValorResidualNegativo valida el payload.
func TestCrearDesincorporacion_Fail_ValorResidualNegativo(t *testing.T) {
	svc, _, _, _ := nuevoServicio()

	sol := solicitudValida(uuid.New().String())
	sol.ValorResidual = -50

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "valor residual")
}

// TestCrearDesincorporacion_Fail_BienYaDesincorporado: el retiro es terminal.
func TestCrearDesincorporacion_Fail_BienYaDesincorporado(t *testing.T) {
	svc, mockRepo, mockBienes, _ := nuevoServicio()

	bienID := uuid.New().String()
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{
		ID: bienID, Estado: domain.BienDesincorporado,
	}, nil)

	_, err := svc.Crear(context.Background(), solicitudValida(bienID), uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ya está desincorporado")
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestCrearDesincorporacion_Fail_PendienteExistente: a lo sumo una solicitud
// pendiente por bien.
func TestCrearDesincorporacion_Fail_PendienteExistente(t *testing.T) {
	svc, mockRepo, mockBienes, _ := nuevoServicio()

	bienID := uuid.New().String()
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{ID: bienID, Estado: domain.BienActivo}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(true, nil)

	_, err := svc.Crear(context.Background(), solicitudValida(bienID), uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Ya existe una desincorporación pendiente")
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestCrearDesincorporacion_Fail_CarreraConcurrente: el índice único parcial
// rechaza a la solicitud que perdió la carrera.
func TestCrearDesincorporacion_Fail_CarreraConcurrente(t *testing.T) {
	svc, mockRepo, mockBienes, _ := nuevoServicio()

	bienID := uuid.New().String()
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{ID: bienID, Estado: domain.BienActivo}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(false, nil)
	mockRepo.On("Crear", mock.Anything, mock.Anything).Return(domain.Desincorporacion{},
		apperror.NewConflictError("Ya existe una desincorporación pendiente para este bien."))

	_, err := svc.Crear(context.Background(), solicitudValida(bienID), uuid.New().String())

	var confErr *apperror.ConflictError
	assert.ErrorAs(t, err, &confErr)
}

// TestAprobarDesincorporacion_Exito_NoMutaAlBien verifica que aprobar no
// consulte ni toque el registro de bienes: el retiro ocurre al ejecutar.
func TestAprobarDesincorporacion_Exito_NoMutaAlBien(t *testing.T) {
	svc, mockRepo, mockBienes, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	aprobadaPor := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Desincorporacion{
		ID: id, Estado: domain.DesincorporacionPendiente,
	}, nil)
	mockRepo.On("Aprobar", mock.Anything, id, aprobadaPor).Return(nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	err := svc.Aprobar(context.Background(), id, aprobadaPor)

	assert.NoError(t, err)
	mockBienes.AssertNotCalled(t, "BuscarPorID", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestAprobarDesincorporacion_Fail_NoPendiente verifica el cierre de la
// máquina de estados.
func TestAprobarDesincorporacion_Fail_NoPendiente(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Desincorporacion{
		ID: id, Estado: domain.DesincorporacionEjecutada,
	}, nil)

	err := svc.Aprobar(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Aprobar", mock.Anything, mock.Anything, mock.Anything)
}

// TestEjecutarDesincorporacion_Exito verifica la transición APROBADA ->
// EJECUTADA con el retiro del bien.
func TestEjecutarDesincorporacion_Exito(t *testing.T) {
	svc, mockRepo, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	aprobada := domain.Desincorporacion{ID: id, BienID: uuid.New().String(), Estado: domain.DesincorporacionAprobada}
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(aprobada, nil)
	mockRepo.On("Ejecutar", mock.Anything, aprobada).Return(domain.Desincorporacion{
		ID: id, BienID: aprobada.BienID, Estado: domain.DesincorporacionEjecutada,
	}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	ejecutada, err := svc.Ejecutar(context.Background(), id, uuid.New().String())

	assert.NoError(t, err)
	assert.Equal(t, domain.DesincorporacionEjecutada, ejecutada.Estado)
	mockRepo.AssertExpectations(t)
}

// TestEjecutarDesincorporacion_Fail_NoAprobada: una solicitud pendiente no
// puede saltarse la aprobación.
func TestEjecutarDesincorporacion_Fail_NoAprobada(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Desincorporacion{
		ID: id, Estado: domain.DesincorporacionPendiente,
	}, nil)

	_, err := svc.Ejecutar(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Ejecutar", mock.Anything, mock.Anything)
}

// TestCancelarDesincorporacion_Fail_SolicitanteAjeno verifica la autorización
// de la cancelación.
func TestCancelarDesincorporacion_Fail_SolicitanteAjeno(t *testing.T) {
	svc, mockRepo, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Desincorporacion{
		ID: id, Estado: domain.DesincorporacionPendiente, SolicitadaPor: uuid.New().String(),
	}, nil)

	err := svc.Cancelar(context.Background(), id, uuid.New().String())

	var forbErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbErr)
	mockRepo.AssertNotCalled(t, "Eliminar", mock.Anything, mock.Anything)
}
