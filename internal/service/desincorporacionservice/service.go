package desincorporacionservice

import (
	"context"
	"fmt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// DesincorporacionRepository define el contrato que el servicio espera de la
// capa de persistencia de desincorporaciones.
type DesincorporacionRepository interface {
	Crear(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error)
	BuscarPorID(ctx context.Context, id string) (domain.Desincorporacion, error)
	ExistePendientePorBien(ctx context.Context, bienID string) (bool, error)
	Aprobar(ctx context.Context, id, aprobadaPor string) error
	Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error
	Ejecutar(ctx context.Context, d domain.Desincorporacion) (domain.Desincorporacion, error)
	Eliminar(ctx context.Context, id string) error
}

// BienRepository es el subconjunto del registro de bienes que este flujo consulta.
type BienRepository interface {
	BuscarPorID(ctx context.Context, id string) (domain.Bien, error)
}

// Auditor es el sumidero de bitácora. Sus fallas se loguean y nunca se propagan.
type Auditor interface {
	Registrar(ctx context.Context, entrada domain.Auditoria) error
}

// Service implementa el flujo de desincorporación: el retiro formal de un
// bien del inventario activo mediante solicitud, aprobación y ejecución.
// Aprobar no muta al bien; la mutación ocurre recién al Ejecutar.
type Service struct {
	repo    DesincorporacionRepository
	bienes  BienRepository
	auditor Auditor
	logger  logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de desincorporaciones.
func NewService(repo DesincorporacionRepository, bienes BienRepository, auditor Auditor, logger logger.Logger) *Service {
	return &Service{
		repo:    repo,
		bienes:  bienes,
		auditor: auditor,
		logger:  logger,
	}
}

// Crear valida las precondiciones y persiste la solicitud en estado PENDIENTE.
func (s *Service) Crear(ctx context.Context, sol domain.SolicitudDesincorporacion, solicitadaPor string) (domain.Desincorporacion, error) {
	s.logger.Debug("Iniciando creación de desincorporación.", map[string]interface{}{"bien_id": sol.BienID})

	if sol.BienID == "" {
		return domain.Desincorporacion{}, apperror.NewValidationError("El bien es obligatorio.")
	}
	if !sol.Motivo.EsValido() {
		return domain.Desincorporacion{}, apperror.NewValidationError(fmt.Sprintf("Motivo de desincorporación desconocido: '%s'.", sol.Motivo))
	}
	if sol.Descripcion == "" {
		return domain.Desincorporacion{}, apperror.NewValidationError("La descripción del motivo es obligatoria.")
	}
	if sol.ValorResidual < 0 {
		return domain.Desincorporacion{}, apperror.NewValidationError("El valor residual no puede ser negativo.")
	}

	bien, err := s.bienes.BuscarPorID(ctx, sol.BienID)
	if err != nil {
		return domain.Desincorporacion{}, err
	}
	if bien.Estado == domain.BienDesincorporado {
		return domain.Desincorporacion{}, apperror.NewValidationError("El bien ya está desincorporado.")
	}

	existe, err := s.repo.ExistePendientePorBien(ctx, sol.BienID)
	if err != nil {
		return domain.Desincorporacion{}, err
	}
	if existe {
		return domain.Desincorporacion{}, apperror.NewValidationError("Ya existe una desincorporación pendiente para este bien.")
	}

	desincorporacion := domain.Desincorporacion{
		BienID:           sol.BienID,
		Motivo:           sol.Motivo,
		Descripcion:      sol.Descripcion,
		ValorResidual:    sol.ValorResidual,
		DocumentoSoporte: sol.DocumentoSoporte,
		Observaciones:    sol.Observaciones,
		SolicitadaPor:    solicitadaPor,
	}

	// El índice único parcial resuelve la carrera de creación concurrente.
	creada, err := s.repo.Crear(ctx, desincorporacion)
	if err != nil {
		return domain.Desincorporacion{}, err
	}

	s.auditar(ctx, creada.ID, domain.AccionCreacion, solicitadaPor,
		fmt.Sprintf("Desincorporación solicitada para el bien %s (motivo %s).", creada.BienID, creada.Motivo))

	s.logger.Info("Desincorporación solicitada.", map[string]interface{}{"id": creada.ID, "bien_id": creada.BienID})
	return creada, nil
}

// Obtener busca una desincorporación por id.
func (s *Service) Obtener(ctx context.Context, id string) (domain.Desincorporacion, error) {
	return s.repo.BuscarPorID(ctx, id)
}

// Aprobar aplica la transición PENDIENTE -> APROBADA. No muta al bien.
func (s *Service) Aprobar(ctx context.Context, id, aprobadaPor string) error {
	d, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if d.Estado != domain.DesincorporacionPendiente {
		return apperror.NewValidationError(
			fmt.Sprintf("La desincorporación no está pendiente; su estado actual es %s.", d.Estado))
	}

	if err := s.repo.Aprobar(ctx, id, aprobadaPor); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionAprobacion, aprobadaPor, "Desincorporación aprobada.")
	s.logger.Info("Desincorporación aprobada.", map[string]interface{}{"id": id})
	return nil
}

// Rechazar aplica la transición PENDIENTE -> RECHAZADA.
func (s *Service) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	d, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if d.Estado != domain.DesincorporacionPendiente {
		return apperror.NewValidationError(
			fmt.Sprintf("La desincorporación no está pendiente; su estado actual es %s.", d.Estado))
	}

	if err := s.repo.Rechazar(ctx, id, aprobadaPor, observaciones); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionRechazo, aprobadaPor, observaciones)
	s.logger.Info("Desincorporación rechazada.", map[string]interface{}{"id": id})
	return nil
}

// Ejecutar aplica la transición APROBADA -> EJECUTADA y retira al bien del
// inventario activo (estado DESINCORPORADO), en una misma transacción.
func (s *Service) Ejecutar(ctx context.Context, id, usuarioID string) (domain.Desincorporacion, error) {
	d, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Desincorporacion{}, err
	}
	if d.Estado != domain.DesincorporacionAprobada {
		return domain.Desincorporacion{}, apperror.NewValidationError(
			fmt.Sprintf("Solo una desincorporación aprobada puede ejecutarse; su estado actual es %s.", d.Estado))
	}

	ejecutada, err := s.repo.Ejecutar(ctx, d)
	if err != nil {
		return domain.Desincorporacion{}, err
	}

	s.auditar(ctx, ejecutada.ID, domain.AccionEjecucion, usuarioID,
		fmt.Sprintf("Bien %s retirado del inventario activo.", ejecutada.BienID))

	s.logger.Info("Desincorporación ejecutada.", map[string]interface{}{"id": id, "bien_id": ejecutada.BienID})
	return ejecutada, nil
}

// Cancelar elimina una solicitud PENDIENTE. Solo el solicitante original
// puede cancelarla.
func (s *Service) Cancelar(ctx context.Context, id, usuarioID string) error {
	d, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if d.SolicitadaPor != usuarioID {
		return apperror.NewForbiddenError("Solo el solicitante original puede cancelar la desincorporación.")
	}
	if d.Estado != domain.DesincorporacionPendiente {
		return apperror.NewValidationError(
			fmt.Sprintf("Solo una desincorporación pendiente puede cancelarse; su estado actual es %s.", d.Estado))
	}

	if err := s.repo.Eliminar(ctx, id); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionCancelacion, usuarioID, "Solicitud cancelada por el solicitante.")
	s.logger.Info("Desincorporación cancelada.", map[string]interface{}{"id": id})
	return nil
}

// auditar escribe en la bitácora con política de mejor esfuerzo.
func (s *Service) auditar(ctx context.Context, entidadID string, accion domain.AccionAuditoria, usuarioID, detalle string) {
	err := s.auditor.Registrar(ctx, domain.Auditoria{
		Entidad:   "desincorporacion",
		EntidadID: entidadID,
		Accion:    accion,
		UsuarioID: usuarioID,
		Detalle:   detalle,
	})
	if err != nil {
		s.logger.Error("Falla al registrar la auditoría de la desincorporación.", err)
	}
}
