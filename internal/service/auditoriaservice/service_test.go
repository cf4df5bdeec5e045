package auditoriaservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"siab/internal/domain"
	"siab/internal/pkg/logger"
	"siab/internal/service/auditoriaservice"
)

// MockAuditoriaRepository es una implementación mock de la interfaz AuditoriaRepository.
type MockAuditoriaRepository struct {
	mock.Mock
}

func (m *MockAuditoriaRepository) Historial(ctx context.Context, entidad, entidadID string) ([]domain.Auditoria, error) {
	args := m.Called(ctx, entidad, entidadID)
	return args.Get(0).([]domain.Auditoria), args.Error(1)
}

// TestHistorial_Exito consulta la bitácora de una transferencia.
func TestHistorial_Exito(t *testing.T) {
	mockRepo := new(MockAuditoriaRepository)
	svc := auditoriaservice.NewService(mockRepo, logger.NewLogger("debug"))

	entidadID := uuid.New().String()
	esperadas := []domain.Auditoria{
		{Entidad: "transferencia", EntidadID: entidadID, Accion: domain.AccionAprobacion},
		{Entidad: "transferencia", EntidadID: entidadID, Accion: domain.AccionCreacion},
	}
	mockRepo.On("Historial", mock.Anything, "transferencia", entidadID).Return(esperadas, nil)

	historial, err := svc.Historial(context.Background(), "transferencia", entidadID)

	assert.NoError(t, err)
	assert.Len(t, historial, 2)
	mockRepo.AssertExpectations(t)
}

// TestHistorial_Fail_EntidadDesconocida rechaza entidades fuera del catálogo.
func TestHistorial_Fail_EntidadDesconocida(t *testing.T) {
	mockRepo := new(MockAuditoriaRepository)
	svc := auditoriaservice.NewService(mockRepo, logger.NewLogger("debug"))

	_, err := svc.Historial(context.Background(), "factura", uuid.New().String())

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Historial", mock.Anything, mock.Anything, mock.Anything)
}
