package referenciaservice

import (
	"context"
	"strings"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// ReferenciaRepository define el contrato de persistencia de los catálogos
// de referencia: ubicaciones, responsables y categorías.
type ReferenciaRepository interface {
	ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error)
	ListarUbicaciones(ctx context.Context) ([]domain.Ubicacion, error)
	CrearUbicacion(ctx context.Context, u domain.Ubicacion) (domain.Ubicacion, error)
	ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error)
	ListarResponsables(ctx context.Context) ([]domain.Responsable, error)
	CrearResponsable(ctx context.Context, resp domain.Responsable) (domain.Responsable, error)
	ListarCategorias(ctx context.Context) ([]domain.Categoria, error)
	CrearCategoria(ctx context.Context, c domain.Categoria) (domain.Categoria, error)
}

// Service administra los catálogos de referencia que los flujos de bienes
// consultan como precondición.
type Service struct {
	repo   ReferenciaRepository
	logger logger.Logger
}

func NewService(repo ReferenciaRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// --- Ubicaciones ---

func (s *Service) ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error) {
	if id == "" {
		return domain.Ubicacion{}, apperror.NewValidationError("El ID de la ubicación es obligatorio.")
	}
	return s.repo.ObtenerUbicacion(ctx, id)
}

func (s *Service) ListarUbicaciones(ctx context.Context) ([]domain.Ubicacion, error) {
	return s.repo.ListarUbicaciones(ctx)
}

// CrearUbicacion valida y registra una nueva unidad administrativa. El código
// de negocio se normaliza a mayúsculas para que la resolución del almacén
// central no dependa de la caja con que se registró.
func (s *Service) CrearUbicacion(ctx context.Context, u domain.Ubicacion) (domain.Ubicacion, error) {
	u.Codigo = strings.ToUpper(strings.TrimSpace(u.Codigo))
	u.Nombre = strings.TrimSpace(u.Nombre)
	if u.Codigo == "" || u.Nombre == "" {
		return domain.Ubicacion{}, apperror.NewValidationError("El código y el nombre de la ubicación son obligatorios.")
	}
	if u.Tipo == "" {
		u.Tipo = "DEPARTAMENTO"
	}
	u.Activa = true
	return s.repo.CrearUbicacion(ctx, u)
}

// --- Responsables ---

func (s *Service) ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error) {
	if id == "" {
		return domain.Responsable{}, apperror.NewValidationError("El ID del responsable es obligatorio.")
	}
	return s.repo.ObtenerResponsable(ctx, id)
}

func (s *Service) ListarResponsables(ctx context.Context) ([]domain.Responsable, error) {
	return s.repo.ListarResponsables(ctx)
}

func (s *Service) CrearResponsable(ctx context.Context, resp domain.Responsable) (domain.Responsable, error) {
	resp.Cedula = strings.TrimSpace(resp.Cedula)
	resp.Nombre = strings.TrimSpace(resp.Nombre)
	if resp.Cedula == "" || resp.Nombre == "" {
		return domain.Responsable{}, apperror.NewValidationError("La cédula y el nombre del responsable son obligatorios.")
	}
	resp.Activo = true
	return s.repo.CrearResponsable(ctx, resp)
}

// --- Categorías ---

func (s *Service) ListarCategorias(ctx context.Context) ([]domain.Categoria, error) {
	return s.repo.ListarCategorias(ctx)
}

func (s *Service) CrearCategoria(ctx context.Context, c domain.Categoria) (domain.Categoria, error) {
	c.Nombre = strings.TrimSpace(c.Nombre)
	if c.Nombre == "" {
		return domain.Categoria{}, apperror.NewValidationError("El nombre de la categoría es obligatorio.")
	}
	return s.repo.CrearCategoria(ctx, c)
}
