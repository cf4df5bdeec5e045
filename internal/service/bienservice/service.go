package bienservice

import (
	"context"
	"fmt"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// BienRepository define el contrato que el servicio espera de la capa de
// persistencia del registro de bienes.
type BienRepository interface {
	Crear(ctx context.Context, bien domain.Bien) (domain.Bien, error)
	BuscarPorID(ctx context.Context, id string) (domain.Bien, error)
	Listar(ctx context.Context, filtro domain.FiltroBienes) ([]domain.Bien, error)
	Actualizar(ctx context.Context, id string, cambios domain.ActualizacionBien) (domain.Bien, error)
	EliminarLogico(ctx context.Context, id string) error
}

// ReferenciaRepository asevera la existencia de la ubicación y el
// responsable iniciales al momento del ingreso.
type ReferenciaRepository interface {
	ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error)
	ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error)
}

// Auditor es el sumidero de bitácora. Sus fallas se loguean y nunca se propagan.
type Auditor interface {
	Registrar(ctx context.Context, entrada domain.Auditoria) error
}

// Service implementa el registro de bienes: ingreso, consulta, edición de
// campos no de custodia y baja directa. La custodia se muta solo a través de
// los flujos de asignación, transferencia y desincorporación.
type Service struct {
	repo        BienRepository
	referencias ReferenciaRepository
	auditor     Auditor
	logger      logger.Logger
}

// NewService crea y retorna una nueva instancia del servicio de bienes.
func NewService(repo BienRepository, referencias ReferenciaRepository, auditor Auditor, logger logger.Logger) *Service {
	return &Service{
		repo:        repo,
		referencias: referencias,
		auditor:     auditor,
		logger:      logger,
	}
}

// Crear registra el ingreso de un nuevo bien al inventario.
func (s *Service) Crear(ctx context.Context, bien domain.Bien, creadoPor string) (domain.Bien, error) {
	if bien.CodigoInterno == "" {
		return domain.Bien{}, apperror.NewValidationError("El código interno del bien es obligatorio.")
	}
	if bien.Descripcion == "" {
		return domain.Bien{}, apperror.NewValidationError("La descripción del bien es obligatoria.")
	}
	if bien.UbicacionID == "" || bien.ResponsableID == "" || bien.CategoriaID == "" {
		return domain.Bien{}, apperror.NewValidationError("La ubicación, el responsable y la categoría son obligatorios.")
	}

	if bien.Estado == "" {
		bien.Estado = domain.BienActivo
	}
	if !bien.Estado.EsValido() {
		return domain.Bien{}, apperror.NewValidationError(fmt.Sprintf("Estado de bien desconocido: '%s'.", bien.Estado))
	}
	// El ingreso nunca arranca en estados de flujo.
	if bien.Estado != domain.BienActivo && bien.Estado != domain.BienInactivo {
		return domain.Bien{}, apperror.NewValidationError("Un bien solo puede ingresar como ACTIVO o INACTIVO.")
	}
	if bien.Condicion == "" {
		bien.Condicion = domain.CondicionBuena
	}
	if !bien.Condicion.EsValida() {
		return domain.Bien{}, apperror.NewValidationError(fmt.Sprintf("Condición física desconocida: '%s'.", bien.Condicion))
	}

	if _, err := s.referencias.ObtenerUbicacion(ctx, bien.UbicacionID); err != nil {
		return domain.Bien{}, err
	}
	if _, err := s.referencias.ObtenerResponsable(ctx, bien.ResponsableID); err != nil {
		return domain.Bien{}, err
	}

	bien.CreadoPor = creadoPor

	creado, err := s.repo.Crear(ctx, bien)
	if err != nil {
		return domain.Bien{}, err
	}

	s.auditar(ctx, creado.ID, domain.AccionCreacion, creadoPor,
		fmt.Sprintf("Bien %s ingresado al inventario.", creado.CodigoInterno))

	s.logger.Info("Bien ingresado.", map[string]interface{}{"id": creado.ID, "codigo_interno": creado.CodigoInterno})
	return creado, nil
}

// Obtener busca un bien por id.
func (s *Service) Obtener(ctx context.Context, id string) (domain.Bien, error) {
	return s.repo.BuscarPorID(ctx, id)
}

// Listar retorna los bienes que satisfacen el filtro.
func (s *Service) Listar(ctx context.Context, filtro domain.FiltroBienes) ([]domain.Bien, error) {
	if filtro.Estado != "" && !filtro.Estado.EsValido() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Estado de bien desconocido: '%s'.", filtro.Estado))
	}
	if filtro.Condicion != "" && !filtro.Condicion.EsValida() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Condición física desconocida: '%s'.", filtro.Condicion))
	}
	return s.repo.Listar(ctx, filtro)
}

// Actualizar aplica cambios sobre los campos editables del bien. La custodia
// no pasa por acá.
func (s *Service) Actualizar(ctx context.Context, id string, cambios domain.ActualizacionBien, usuarioID string) (domain.Bien, error) {
	if cambios.Condicion != nil && !cambios.Condicion.EsValida() {
		return domain.Bien{}, apperror.NewValidationError(fmt.Sprintf("Condición física desconocida: '%s'.", *cambios.Condicion))
	}

	actualizado, err := s.repo.Actualizar(ctx, id, cambios)
	if err != nil {
		return domain.Bien{}, err
	}

	s.auditar(ctx, id, domain.AccionActualizacion, usuarioID, "Datos del bien actualizados.")
	return actualizado, nil
}

// Eliminar aplica la baja directa: marca el bien como DESINCORPORADO sin
// pasar por el flujo formal de desincorporación. Nunca borra la fila.
func (s *Service) Eliminar(ctx context.Context, id, usuarioID string) error {
	bien, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	if bien.Estado == domain.BienDesincorporado {
		return apperror.NewValidationError("El bien ya está desincorporado.")
	}

	if err := s.repo.EliminarLogico(ctx, id); err != nil {
		return err
	}

	s.auditar(ctx, id, domain.AccionBaja, usuarioID, "Baja directa del bien (sin flujo de desincorporación).")
	s.logger.Info("Bien dado de baja.", map[string]interface{}{"id": id})
	return nil
}

// auditar escribe en la bitácora con política de mejor esfuerzo.
func (s *Service) auditar(ctx context.Context, entidadID string, accion domain.AccionAuditoria, usuarioID, detalle string) {
	err := s.auditor.Registrar(ctx, domain.Auditoria{
		Entidad:   "bien",
		EntidadID: entidadID,
		Accion:    accion,
		UsuarioID: usuarioID,
		Detalle:   detalle,
	})
	if err != nil {
		s.logger.Error("Falla al registrar la auditoría del bien.", err)
	}
}
