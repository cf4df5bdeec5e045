package transferenciaservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
	"siab/internal/service/transferenciaservice"
)

// MockTransferenciaRepository es una implementación mock de la interfaz TransferenciaRepository.
type MockTransferenciaRepository struct {
	mock.Mock
}

func (m *MockTransferenciaRepository) Crear(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) BuscarPorID(ctx context.Context, id string) (domain.Transferencia, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) ExistePendientePorBien(ctx context.Context, bienID string) (bool, error) {
	args := m.Called(ctx, bienID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransferenciaRepository) ListarPorBien(ctx context.Context, bienID string) ([]domain.Transferencia, error) {
	args := m.Called(ctx, bienID)
	return args.Get(0).([]domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) Aprobar(ctx context.Context, t domain.Transferencia, aprobadaPor string) (domain.Transferencia, error) {
	args := m.Called(ctx, t, aprobadaPor)
	return args.Get(0).(domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	args := m.Called(ctx, id, aprobadaPor, observaciones)
	return args.Error(0)
}

func (m *MockTransferenciaRepository) Ejecutar(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) Devolver(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(domain.Transferencia), args.Error(1)
}

func (m *MockTransferenciaRepository) Eliminar(ctx context.Context, id string) error {
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

func nuevoServicio() (*transferenciaservice.Service, *MockTransferenciaRepository, *MockBienRepository, *MockReferenciaRepository, *MockAuditor) {
	mockRepo := new(MockTransferenciaRepository)
	mockBienes := new(MockBienRepository)
	mockRefs := new(MockReferenciaRepository)
	mockAuditor := new(MockAuditor)
	svc := transferenciaservice.NewService(mockRepo, mockBienes, mockRefs, mockAuditor, logger.NewLogger("debug"))
	return svc, mockRepo, mockBienes, mockRefs, mockAuditor
}

func solicitudValida(bienID string) domain.SolicitudTransferencia {
	return domain.SolicitudTransferencia{
		BienID:               bienID,
		UbicacionDestinoID:   uuid.New().String(),
		ResponsableDestinoID: uuid.New().String(),
		Motivo:               "Reubicación del equipo al área de emergencias",
	}
}

// TestCrearTransferencia_Exito_OrigenCapturado verifica que el origen se tome
// del estado actual del bien y no del llamador.
func TestCrearTransferencia_Exito_OrigenCapturado(t *testing.T) {
	svc, mockRepo, mockBienes, mockRefs, mockAuditor := nuevoServicio()

	bienID := uuid.New().String()
	origenUbicacion := uuid.New().String()
	origenResponsable := uuid.New().String()
	sol := solicitudValida(bienID)
	usuarioID := uuid.New().String()

	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{
		ID: bienID, Estado: domain.BienActivo,
		UbicacionID: origenUbicacion, ResponsableID: origenResponsable,
	}, nil)
	mockRefs.On("ObtenerUbicacion", mock.Anything, sol.UbicacionDestinoID).Return(domain.Ubicacion{}, nil)
	mockRefs.On("ObtenerResponsable", mock.Anything, sol.ResponsableDestinoID).Return(domain.Responsable{}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(false, nil)
	mockRepo.On("Crear", mock.Anything, mock.MatchedBy(func(tr domain.Transferencia) bool {
		return tr.UbicacionOrigenID == origenUbicacion &&
			tr.ResponsableOrigenID == origenResponsable &&
			tr.Tipo == domain.TransferenciaPermanente &&
			tr.SolicitadaPor == usuarioID
	})).Return(domain.Transferencia{ID: uuid.New().String(), BienID: bienID, Estado: domain.TransferenciaPendiente}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	creada, err := svc.Crear(context.Background(), sol, usuarioID)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransferenciaPendiente, creada.Estado)
	mockRepo.AssertExpectations(t)
}

// TestCrearTransferencia_Fail_TemporalSinFechaRetorno valida la regla del
// préstamo temporal.
func TestCrearTransferencia_Fail_TemporalSinFechaRetorno(t *testing.T) {
	svc, _, mockBienes, _, _ := nuevoServicio()

	sol := solicitudValida(uuid.New().String())
	sol.Tipo = domain.TransferenciaTemporal

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fecha de retorno")
	mockBienes.AssertNotCalled(t, "BuscarPorID", mock.Anything, mock.Anything)
}

// TestCrearTransferencia_Fail_PermanenteConFechaRetorno valida el reverso.
func TestCrearTransferencia_Fail_PermanenteConFechaRetorno(t *testing.T) {
	svc, _, _, _, _ := nuevoServicio()

	retorno := time.Now().Add(30 * 24 * time.Hour)
	sol := solicitudValida(uuid.New().String())
	sol.Tipo = domain.TransferenciaPermanente
	sol.FechaRetornoPrevista = &retorno

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no admiten fecha de retorno")
}

// TestCrearTransferencia_Fail_PendienteExistente verifica que a lo sumo haya
// una solicitud pendiente por bien.
func TestCrearTransferencia_Fail_PendienteExistente(t *testing.T) {
	svc, mockRepo, mockBienes, mockRefs, _ := nuevoServicio()

	bienID := uuid.New().String()
	sol := solicitudValida(bienID)
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{ID: bienID, Estado: domain.BienActivo}, nil)
	mockRefs.On("ObtenerUbicacion", mock.Anything, sol.UbicacionDestinoID).Return(domain.Ubicacion{}, nil)
	mockRefs.On("ObtenerResponsable", mock.Anything, sol.ResponsableDestinoID).Return(domain.Responsable{}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(true, nil)

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Ya existe una transferencia pendiente")
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestCrearTransferencia_Fail_CarreraConcurrente: dos solicitudes pasaron el
// chequeo de pendiente; el índice único parcial rechaza a la segunda.
func TestCrearTransferencia_Fail_CarreraConcurrente(t *testing.T) {
	svc, mockRepo, mockBienes, mockRefs, _ := nuevoServicio()

	bienID := uuid.New().String()
	sol := solicitudValida(bienID)
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{ID: bienID, Estado: domain.BienActivo}, nil)
	mockRefs.On("ObtenerUbicacion", mock.Anything, sol.UbicacionDestinoID).Return(domain.Ubicacion{}, nil)
	mockRefs.On("ObtenerResponsable", mock.Anything, sol.ResponsableDestinoID).Return(domain.Responsable{}, nil)
	mockRepo.On("ExistePendientePorBien", mock.Anything, bienID).Return(false, nil)
	mockRepo.On("Crear", mock.Anything, mock.Anything).Return(domain.Transferencia{},
		apperror.NewConflictError("Ya existe una transferencia pendiente para este bien."))

	_, err := svc.Crear(context.Background(), sol, uuid.New().String())

	var confErr *apperror.ConflictError
	assert.ErrorAs(t, err, &confErr)
}

// TestCrearTransferencia_Fail_BienDesincorporado verifica la terminalidad del
// estado DESINCORPORADO.
func TestCrearTransferencia_Fail_BienDesincorporado(t *testing.T) {
	svc, mockRepo, mockBienes, _, _ := nuevoServicio()

	bienID := uuid.New().String()
	mockBienes.On("BuscarPorID", mock.Anything, bienID).Return(domain.Bien{
		ID: bienID, Estado: domain.BienDesincorporado,
	}, nil)

	_, err := svc.Crear(context.Background(), solicitudValida(bienID), uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "desincorporado")
	mockRepo.AssertNotCalled(t, "Crear", mock.Anything, mock.Anything)
}

// TestAprobarTransferencia_Exito verifica la transición PENDIENTE -> APROBADA.
func TestAprobarTransferencia_Exito(t *testing.T) {
	svc, mockRepo, _, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	aprobadaPor := uuid.New().String()
	pendiente := domain.Transferencia{ID: id, Estado: domain.TransferenciaPendiente, BienID: uuid.New().String()}

	mockRepo.On("BuscarPorID", mock.Anything, id).Return(pendiente, nil)
	mockRepo.On("Aprobar", mock.Anything, pendiente, aprobadaPor).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaAprobada, AprobadaPor: aprobadaPor,
	}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	aprobada, err := svc.Aprobar(context.Background(), id, aprobadaPor)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransferenciaAprobada, aprobada.Estado)
	mockRepo.AssertExpectations(t)
}

// TestAprobarTransferencia_Fail_NoPendiente verifica el cierre de la máquina
// de estados: solo PENDIENTE admite aprobación.
func TestAprobarTransferencia_Fail_NoPendiente(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaRechazada,
	}, nil)

	_, err := svc.Aprobar(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no está pendiente")
	mockRepo.AssertNotCalled(t, "Aprobar", mock.Anything, mock.Anything, mock.Anything)
}

// TestEjecutarTransferencia_Fail_NoAprobada verifica que solo APROBADA
// admita ejecución.
func TestEjecutarTransferencia_Fail_NoAprobada(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaPendiente,
	}, nil)

	_, err := svc.Ejecutar(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Ejecutar", mock.Anything, mock.Anything)
}

// TestRechazarTransferencia_Exito verifica la transición PENDIENTE -> RECHAZADA.
func TestRechazarTransferencia_Exito(t *testing.T) {
	svc, mockRepo, _, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	revisor := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaPendiente,
	}, nil)
	mockRepo.On("Rechazar", mock.Anything, id, revisor, "destino sin espacio físico").Return(nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	err := svc.Rechazar(context.Background(), id, revisor, "destino sin espacio físico")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestCancelarTransferencia_Fail_SolicitanteAjeno verifica la autorización de
// la cancelación.
func TestCancelarTransferencia_Fail_SolicitanteAjeno(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaPendiente, SolicitadaPor: uuid.New().String(),
	}, nil)

	err := svc.Cancelar(context.Background(), id, uuid.New().String())

	var forbErr *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbErr)
	mockRepo.AssertNotCalled(t, "Eliminar", mock.Anything, mock.Anything)
}

// TestCancelarTransferencia_Exito verifica la cancelación del propio solicitante.
func TestCancelarTransferencia_Exito(t *testing.T) {
	svc, mockRepo, _, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	solicitante := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Estado: domain.TransferenciaPendiente, SolicitadaPor: solicitante,
	}, nil)
	mockRepo.On("Eliminar", mock.Anything, id).Return(nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	err := svc.Cancelar(context.Background(), id, solicitante)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestDevolverTransferencia_Exito verifica el retorno de un préstamo temporal.
func TestDevolverTransferencia_Exito(t *testing.T) {
	svc, mockRepo, _, _, mockAuditor := nuevoServicio()

	id := uuid.New().String()
	retorno := time.Now().Add(15 * 24 * time.Hour)
	temporal := domain.Transferencia{
		ID: id, Tipo: domain.TransferenciaTemporal, Estado: domain.TransferenciaAprobada,
		FechaRetornoPrevista: &retorno,
		UbicacionOrigenID:    uuid.New().String(),
	}
	devolucion := time.Now()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(temporal, nil)
	mockRepo.On("Devolver", mock.Anything, temporal).Return(domain.Transferencia{
		ID: id, Tipo: domain.TransferenciaTemporal, Estado: domain.TransferenciaAprobada,
		FechaDevolucion: &devolucion,
	}, nil)
	mockAuditor.On("Registrar", mock.Anything, mock.Anything).Return(nil)

	devuelta, err := svc.Devolver(context.Background(), id, uuid.New().String())

	assert.NoError(t, err)
	assert.NotNil(t, devuelta.FechaDevolucion)
	// El estado no cambia con la devolución.
	assert.Equal(t, domain.TransferenciaAprobada, devuelta.Estado)
	mockRepo.AssertExpectations(t)
}

// TestDevolverTransferencia_Fail_Permanente: solo los préstamos temporales
// admiten devolución.
func TestDevolverTransferencia_Fail_Permanente(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Tipo: domain.TransferenciaPermanente, Estado: domain.TransferenciaAprobada,
	}, nil)

	_, err := svc.Devolver(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "temporales")
	mockRepo.AssertNotCalled(t, "Devolver", mock.Anything, mock.Anything)
}

// TestDevolverTransferencia_Fail_YaDevuelta: la devolución es única.
func TestDevolverTransferencia_Fail_YaDevuelta(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	devolucion := time.Now()
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Tipo: domain.TransferenciaTemporal, Estado: domain.TransferenciaEjecutada,
		FechaDevolucion: &devolucion,
	}, nil)

	_, err := svc.Devolver(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ya fue devuelta")
}

// TestDevolverTransferencia_Fail_Pendiente: una solicitud que no surtió
// efecto todavía no tiene nada que devolver.
func TestDevolverTransferencia_Fail_Pendiente(t *testing.T) {
	svc, mockRepo, _, _, _ := nuevoServicio()

	id := uuid.New().String()
	retorno := time.Now().Add(24 * time.Hour)
	mockRepo.On("BuscarPorID", mock.Anything, id).Return(domain.Transferencia{
		ID: id, Tipo: domain.TransferenciaTemporal, Estado: domain.TransferenciaPendiente,
		FechaRetornoPrevista: &retorno,
	}, nil)

	_, err := svc.Devolver(context.Background(), id, uuid.New().String())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "aprobada o ejecutada")
}
