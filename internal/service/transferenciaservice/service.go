package transferenciaservice

import (
	"context"
	"fmt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// TransferenciaRepository define el contrato que el servicio espera de la
// capa de persistencia de transferencias.
type TransferenciaRepository interface {
	Crear(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error)
	BuscarPorID(ctx context.Context, id string) (domain.Transferencia, error)
	ExistePendientePorBien(ctx context.Context, bienID string) (bool, error)
	ListarPorBien(ctx context.Context, bienID string) ([]domain.Transferencia, error)
	Aprobar(ctx context.Context, t domain.Transferencia, aprobadaPor string) (domain.Transferencia, error)
	Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error
	Ejecutar(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error)
	Devolver(ctx context.Context, t domain.Transferencia) (domain.Transferencia, error)
	Eliminar(ctx context.Context, id string) error
}

// BienRepository es el subconjunto del registro de bienes que este flujo consulta.
type BienRepository interface {
	BuscarPorID(ctx context.Context, id string) (domain.Bien, error)
}

// ReferenciaRepository asevera la existencia del destino de la transferencia.
type ReferenciaRepository interface {
	ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error)
	ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error)
}

// Auditor es el sumidero de bitácora. Sus fallas se loguean y nunca se propagan.
type Auditor interface {
	Registrar(ctx context.Context, entrada domain.Auditoria) error
}

// Service implementa el flujo de transferencias entre unidades
// administrativas, con variantes permanente y temporal (préstamo con
// retorno). La custodia del bien se aplica al APROBAR; Ejecutar la
// reconfirma de forma idempotente.
type Service struct {
	repo        TransferenciaRepository
	bienes      BienRepository
	referencias ReferenciaRepository
	auditor     Auditor
	logger      logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de transferencias.
func NewService(repo TransferenciaRepository, bienes BienRepository, referencias ReferenciaRepository, auditor Auditor, logger logger.Logger) *Service {
	return &Service{
		repo:        repo,
		bienes:      bienes,
		referencias: referencias,
		auditor:     auditor,
		logger:      logger,
	}
}

// Crear valida las precondiciones y persiste la solicitud en estado
// PENDIENTE. El origen se captura del estado actual del bien: el llamador no
// puede forjar un origen ficticio.
func (s *Service) Crear(ctx context.Context, sol domain.SolicitudTransferencia, solicitadaPor string) (domain.Transferencia, error) {
	s.logger.Debug("Iniciando creación de transferencia.", map[string]interface{}{
		"bien_id": sol.BienID, "ubicacion_destino_id": sol.UbicacionDestinoID,
	})

	if sol.BienID == "" || sol.UbicacionDestinoID == "" || sol.ResponsableDestinoID == "" {
		return domain.Transferencia{}, apperror.NewValidationError("El bien, la ubicación destino y el responsable destino son obligatorios.")
	}
	if sol.Motivo == "" {
		return domain.Transferencia{}, apperror.NewValidationError("El motivo de la transferencia es obligatorio.")
	}

	if sol.Tipo == "" {
		sol.Tipo = domain.TransferenciaPermanente
	}
	if !sol.Tipo.EsValido() {
		return domain.Transferencia{}, apperror.NewValidationError(fmt.Sprintf("Tipo de transferencia desconocido: '%s'.", sol.Tipo))
	}
	if sol.Tipo == domain.TransferenciaTemporal && sol.FechaRetornoPrevista == nil {
		return domain.Transferencia{}, apperror.NewValidationError("Las transferencias temporales requieren la fecha de retorno prevista.")
	}
	if sol.Tipo == domain.TransferenciaPermanente && sol.FechaRetornoPrevista != nil {
		return domain.Transferencia{}, apperror.NewValidationError("Las transferencias permanentes no admiten fecha de retorno.")
	}

	bien, err := s.bienes.BuscarPorID(ctx, sol.BienID)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if bien.Estado == domain.BienDesincorporado {
		return domain.Transferencia{}, apperror.NewValidationError("El bien está desincorporado y no admite movimientos.")
	}

	if _, err := s.referencias.ObtenerUbicacion(ctx, sol.UbicacionDestinoID); err != nil {
		return domain.Transferencia{}, err
	}
	if _, err := s.referencias.ObtenerResponsable(ctx, sol.ResponsableDestinoID); err != nil {
		return domain.Transferencia{}, err
	}

	existe, err := s.repo.ExistePendientePorBien(ctx, sol.BienID)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if existe {
		return domain.Transferencia{}, apperror.NewValidationError("Ya existe una transferencia pendiente para este bien.")
	}

	transferencia := domain.Transferencia{
		BienID: sol.BienID,
		// Origen capturado del estado actual del bien.
		UbicacionOrigenID:    bien.UbicacionID,
		ResponsableOrigenID:  bien.ResponsableID,
		UbicacionDestinoID:   sol.UbicacionDestinoID,
		ResponsableDestinoID: sol.ResponsableDestinoID,
		Motivo:               sol.Motivo,
		Tipo:                 sol.Tipo,
		FechaRetornoPrevista: sol.FechaRetornoPrevista,
		Observaciones:        sol.Observaciones,
		SolicitadaPor:        solicitadaPor,
	}

	// El índice único parcial resuelve la carrera de creación concurrente:
	// si dos solicitudes pasaron el chequeo anterior, una recibe ConflictError.
	creada, err := s.repo.Crear(ctx, transferencia)
	if err != nil {
		return domain.Transferencia{}, err
	}

	s.auditar(ctx, creada.ID, domain.AccionCreacion, solicitadaPor,
		fmt.Sprintf("Transferencia %s solicitada para el bien %s.", creada.Tipo, creada.BienID))

	s.logger.Info("Transferencia solicitada.", map[string]interface{}{"id": creada.ID, "bien_id": creada.BienID})
	return creada, nil
}

// Obtener busca una transferencia por id.
func (s *Service) Obtener(ctx context.Context, id string) (domain.Transferencia, error) {
	return s.repo.BuscarPorID(ctx, id)
}

// HistorialPorBien lista las transferencias de un bien, la más reciente primero.
func (s *Service) HistorialPorBien(ctx context.Context, bienID string) ([]domain.Transferencia, error) {
	return s.repo.ListarPorBien(ctx, bienID)
}

// Aprobar aplica la transición PENDIENTE -> APROBADA. La custodia del bien
// se muta en esta transición (decisión de diseño; Ejecutar solo reconfirma).
func (s *Service) Aprobar(ctx context.Context, id, aprobadaPor string) (domain.Transferencia, error) {
	t, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if t.Estado != domain.TransferenciaPendiente {
		return domain.Transferencia{}, apperror.NewValidationError(
			fmt.Sprintf("La transferencia no está pendiente; su estado actual es %s.", t.Estado))
	}

	aprobada, err := s.repo.Aprobar(ctx, t, aprobadaPor)
	if err != nil {
		return domain.Transferencia{}, err
	}

	s.auditar(ctx, aprobada.ID, domain.AccionAprobacion, aprobadaPor,
		fmt.Sprintf("Bien %s movido a la ubicación %s.", aprobada.BienID, aprobada.UbicacionDestinoID))

	s.logger.Info("Transferencia aprobada.", map[string]interface{}{"id": id})
	return aprobada, nil
}

// Rechazar aplica la transición PENDIENTE -> RECHAZADA. No muta al bien.
func (s *Service) Rechazar(ctx context.Context, id, aprobadaPor, observaciones string) error {
	t, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if t.Estado != domain.TransferenciaPendiente {
		return apperror.NewValidationError(
			fmt.Sprintf("La transferencia no está pendiente; su estado actual es %s.", t.Estado))
	}

	if err := s.repo.Rechazar(ctx, id, aprobadaPor, observaciones); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionRechazo, aprobadaPor, observaciones)
	s.logger.Info("Transferencia rechazada.", map[string]interface{}{"id": id})
	return nil
}

// Ejecutar aplica la transición APROBADA -> EJECUTADA, reconfirmando la
// custodia del bien. Soporta flujos donde aprobación y ejecución están
// administrativamente separadas.
func (s *Service) Ejecutar(ctx context.Context, id, usuarioID string) (domain.Transferencia, error) {
	t, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if t.Estado != domain.TransferenciaAprobada {
		return domain.Transferencia{}, apperror.NewValidationError(
			fmt.Sprintf("Solo una transferencia aprobada puede ejecutarse; su estado actual es %s.", t.Estado))
	}

	ejecutada, err := s.repo.Ejecutar(ctx, t)
	if err != nil {
		return domain.Transferencia{}, err
	}

	s.auditar(ctx, ejecutada.ID, domain.AccionEjecucion, usuarioID, "Transferencia ejecutada.")
	s.logger.Info("Transferencia ejecutada.", map[string]interface{}{"id": id})
	return ejecutada, nil
}

// Cancelar elimina una solicitud PENDIENTE. Solo el solicitante original
// puede cancelarla.
func (s *Service) Cancelar(ctx context.Context, id, usuarioID string) error {
	t, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if t.SolicitadaPor != usuarioID {
		return apperror.NewForbiddenError("Solo el solicitante original puede cancelar la transferencia.")
	}
	if t.Estado != domain.TransferenciaPendiente {
		return apperror.NewValidationError(
			fmt.Sprintf("Solo una transferencia pendiente puede cancelarse; su estado actual es %s.", t.Estado))
	}

	if err := s.repo.Eliminar(ctx, id); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionCancelacion, usuarioID, "Solicitud cancelada por el solicitante.")
	s.logger.Info("Transferencia cancelada.", map[string]interface{}{"id": id})
	return nil
}

// Devolver registra el retorno de una transferencia TEMPORAL: estampa la
// fecha de devolución y revierte la custodia del bien al origen.
func (s *Service) Devolver(ctx context.Context, id, usuarioID string) (domain.Transferencia, error) {
	t, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return domain.Transferencia{}, err
	}
	if t.Tipo != domain.TransferenciaTemporal {
		return domain.Transferencia{}, apperror.NewValidationError("Solo las transferencias temporales admiten devolución.")
	}
	if t.Estado != domain.TransferenciaAprobada && t.Estado != domain.TransferenciaEjecutada {
		return domain.Transferencia{}, apperror.NewValidationError(
			fmt.Sprintf("La transferencia debe estar aprobada o ejecutada para registrar la devolución; su estado actual es %s.", t.Estado))
	}
	if t.FechaDevolucion != nil {
		return domain.Transferencia{}, apperror.NewValidationError("La transferencia ya fue devuelta.")
	}

	devuelta, err := s.repo.Devolver(ctx, t)
	if err != nil {
		return domain.Transferencia{}, err
	}

	s.auditar(ctx, devuelta.ID, domain.AccionDevolucion, usuarioID,
		fmt.Sprintf("Bien %s devuelto a la ubicación %s.", devuelta.BienID, devuelta.UbicacionOrigenID))

	s.logger.Info("Devolución registrada.", map[string]interface{}{"id": id})
	return devuelta, nil
}

// auditar escribe en la bitácora con política de mejor esfuerzo.
func (s *Service) auditar(ctx context.Context, entidadID string, accion domain.AccionAuditoria, usuarioID, detalle string) {
	err := s.auditor.Registrar(ctx, domain.Auditoria{
		Entidad:   "transferencia",
		EntidadID: entidadID,
		Accion:    accion,
		UsuarioID: usuarioID,
		Detalle:   detalle,
	})
	if err != nil {
		s.logger.Error("Falla al registrar la auditoría de la transferencia.", err)
	}
}
