package asignacionservice

import (
	"context"
	"errors"
	"fmt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// AsignacionRepository define el contrato que el servicio espera de la capa
// de persistencia de asignaciones.
type AsignacionRepository interface {
	Crear(ctx context.Context, a domain.Asignacion) (domain.Asignacion, error)
	BuscarPorBien(ctx context.Context, bienID string) (domain.Asignacion, error)
	BienesPendientes(ctx context.Context, almacenID string) ([]domain.Bien, error)
}

// BienRepository es el subconjunto del registro de bienes que este flujo consulta.
type BienRepository interface {
	BuscarPorID(ctx context.Context, id string) (domain.Bien, error)
}

// ReferenciaRepository asevera la existencia del destino de la asignación.
type ReferenciaRepository interface {
	ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error)
	ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error)
}

// Auditor es el sumidero de bitácora. Sus fallas se loguean y nunca se propagan.
type Auditor interface {
	Registrar(ctx context.Context, entrada domain.Auditoria) error
}

// Service implementa el flujo de asignación: la entrega única de un bien
// desde el almacén central a su primer departamento.
type Service struct {
	repo        AsignacionRepository
	bienes      BienRepository
	referencias ReferenciaRepository
	auditor     Auditor
	almacenID   string // id de la ubicación del almacén central, resuelto al arrancar
	logger      logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de asignaciones.
// almacenID es el id de la ubicación resuelta desde el código bien conocido
// del almacén central.
func NewService(repo AsignacionRepository, bienes BienRepository, referencias ReferenciaRepository, auditor Auditor, almacenID string, logger logger.Logger) *Service {
	return &Service{
		repo:        repo,
		bienes:      bienes,
		referencias: referencias,
		auditor:     auditor,
		almacenID:   almacenID,
		logger:      logger,
	}
}

// Crear valida las precondiciones del flujo y persiste la asignación junto
// con la mutación de custodia del bien (una sola transacción en el
// repositorio). Cada precondición falla con un mensaje propio y
// distinguible.
func (s *Service) Crear(ctx context.Context, sol domain.SolicitudAsignacion, emitidaPor string) (domain.Asignacion, error) {
	s.logger.Debug("Iniciando creación de asignación.", map[string]interface{}{
		"bien_id": sol.BienID, "ubicacion_destino_id": sol.UbicacionDestinoID,
	})

	if sol.BienID == "" || sol.UbicacionDestinoID == "" || sol.ResponsableDestinoID == "" {
		return domain.Asignacion{}, apperror.NewValidationError("El bien, la ubicación destino y el responsable destino son obligatorios.")
	}
	if sol.Motivo == "" {
		return domain.Asignacion{}, apperror.NewValidationError("El motivo de la asignación es obligatorio.")
	}

	// 1. El bien debe existir.
	bien, err := s.bienes.BuscarPorID(ctx, sol.BienID)
	if err != nil {
		return domain.Asignacion{}, err
	}

	// 2. El almacén central debe estar resuelto; su ausencia es una falla de
	// configuración, no un caso de uso.
	if s.almacenID == "" {
		s.logger.Error("La unidad de almacén central no está configurada.", nil)
		return domain.Asignacion{}, apperror.NewValidationError("La unidad de almacén central no está configurada en el sistema.")
	}

	// 3. El bien debe estar físicamente en el almacén central.
	if bien.UbicacionID != s.almacenID {
		return domain.Asignacion{}, apperror.NewValidationError("Solo pueden asignarse bienes ubicados en el almacén central; este bien ya está en otro departamento.")
	}

	if bien.Estado == domain.BienDesincorporado {
		return domain.Asignacion{}, apperror.NewValidationError("El bien está desincorporado y no admite movimientos.")
	}

	// 4. El destino debe existir.
	if _, err := s.referencias.ObtenerUbicacion(ctx, sol.UbicacionDestinoID); err != nil {
		return domain.Asignacion{}, err
	}
	if _, err := s.referencias.ObtenerResponsable(ctx, sol.ResponsableDestinoID); err != nil {
		return domain.Asignacion{}, err
	}

	// 5. A lo sumo una asignación por bien en toda su vida.
	_, err = s.repo.BuscarPorBien(ctx, sol.BienID)
	if err == nil {
		return domain.Asignacion{}, apperror.NewValidationError("El bien ya posee una asignación registrada; use una transferencia.")
	}
	var notFound *apperror.NotFoundError
	if !errors.As(err, &notFound) {
		return domain.Asignacion{}, err
	}

	asignacion := domain.Asignacion{
		BienID:               sol.BienID,
		UbicacionDestinoID:   sol.UbicacionDestinoID,
		ResponsableDestinoID: sol.ResponsableDestinoID,
		Motivo:               sol.Motivo,
		Observaciones:        sol.Observaciones,
		EmitidaPor:           emitidaPor,
	}

	// El repositorio inserta la asignación y aplica la custodia en una sola
	// transacción. Si otra solicitud ganó la carrera, la restricción única
	// emerge acá como ConflictError.
	creada, err := s.repo.Crear(ctx, asignacion)
	if err != nil {
		return domain.Asignacion{}, err
	}

	s.auditar(ctx, creada.ID, domain.AccionCreacion, emitidaPor,
		fmt.Sprintf("Bien %s asignado a la ubicación %s.", creada.BienID, creada.UbicacionDestinoID))

	s.logger.Info("Asignación registrada.", map[string]interface{}{"id": creada.ID, "bien_id": creada.BienID})
	return creada, nil
}

// BienesPendientes lista los bienes del almacén central que aún no fueron
// asignados; alimenta la lista de trabajo del operador.
func (s *Service) BienesPendientes(ctx context.Context) ([]domain.Bien, error) {
	if s.almacenID == "" {
		return nil, apperror.NewValidationError("La unidad de almacén central no está configurada en el sistema.")
	}
	return s.repo.BienesPendientes(ctx, s.almacenID)
}

// auditar escribe en la bitácora con política de mejor esfuerzo.
func (s *Service) auditar(ctx context.Context, entidadID string, accion domain.AccionAuditoria, usuarioID, detalle string) {
	err := s.auditor.Registrar(ctx, domain.Auditoria{
		Entidad:   "asignacion",
		EntidadID: entidadID,
		Accion:    accion,
		UsuarioID: usuarioID,
		Detalle:   detalle,
	})
	if err != nil {
		s.logger.Error("Falla al registrar la auditoría de la asignación.", err)
	}
}
