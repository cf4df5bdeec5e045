package auditoriaservice

import (
	"context"
	"fmt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// AuditoriaRepository define el contrato de lectura de la bitácora.
type AuditoriaRepository interface {
	Historial(ctx context.Context, entidad, entidadID string) ([]domain.Auditoria, error)
}

// entidadesConocidas son las entidades sobre las que se expone historial.
var entidadesConocidas = map[string]bool{
	"bien":             true,
	"asignacion":       true,
	"transferencia":    true,
	"desincorporacion": true,
}

// Service expone la consulta de historial por entidad.
type Service struct {
	repo   AuditoriaRepository
	logger logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de auditoría.
func NewService(repo AuditoriaRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Historial retorna las entradas de bitácora de una entidad, la más reciente
// primero.
func (s *Service) Historial(ctx context.Context, entidad, entidadID string) ([]domain.Auditoria, error) {
	if !entidadesConocidas[entidad] {
		return nil, apperror.NewValidationError(fmt.Sprintf("Entidad desconocida: '%s'.", entidad))
	}
	if entidadID == "" {
		return nil, apperror.NewValidationError("El id de la entidad es obligatorio.")
	}
	return s.repo.Historial(ctx, entidad, entidadID)
}
