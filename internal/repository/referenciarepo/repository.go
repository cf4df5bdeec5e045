package referenciarepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"siab/internal/domain"
	"siab/internal/errors"
	"siab/internal/pkg/cache"
	"siab/internal/pkg/database"
	"siab/internal/pkg/logger"
)

// ReferenciaRepository agrupa el acceso a las tablas de referencia que los
// flujos consultan para asertar existencia: ubicaciones (unidades
// administrativas) y responsables. Las lecturas por id pasan por un cache
// read-through en Redis; estas tablas cambian poco y se consultan en cada
// precondición de flujo.
type ReferenciaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	cache     cache.Client
	cacheTTL  time.Duration
	logger    logger.Logger
}

// NewReferenciaRepository crea y retorna una instancia del repositorio de referencia.
func NewReferenciaRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ReferenciaRepository {
	return &ReferenciaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// --- Ubicaciones ---

// ObtenerUbicacion busca una ubicación por id, con cache read-through.
func (r *ReferenciaRepository) ObtenerUbicacion(ctx context.Context, id string) (domain.Ubicacion, error) {
	claveCache := "ubicacion:" + id
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, claveCache); err == nil {
			var u domain.Ubicacion
			if err := json.Unmarshal([]byte(raw), &u); err == nil {
				return u, nil
			}
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, codigo, nombre, tipo, activa, created_at, updated_at FROM ubicaciones WHERE id = $1`

	var u domain.Ubicacion
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&u.ID, &u.Codigo, &u.Nombre, &u.Tipo, &u.Activa, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Ubicacion{}, errors.NewNotFoundError(fmt.Sprintf("Ubicación con ID %s no encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar ubicación en el DB.", err)
		return domain.Ubicacion{}, errors.NewDBError("Falla al buscar la ubicación", err)
	}

	r.guardarEnCache(ctx, claveCache, u)
	return u, nil
}

// ObtenerUbicacionPorCodigo busca una ubicación por su código de negocio.
// Se usa una sola vez al arrancar para resolver el almacén central.
func (r *ReferenciaRepository) ObtenerUbicacionPorCodigo(ctx context.Context, codigo string) (domain.Ubicacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, codigo, nombre, tipo, activa, created_at, updated_at FROM ubicaciones WHERE codigo = $1`

	var u domain.Ubicacion
	err := r.DB.QueryRowContext(ctxTimeout, query, codigo).Scan(
		&u.ID, &u.Codigo, &u.Nombre, &u.Tipo, &u.Activa, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Ubicacion{}, errors.NewNotFoundError(fmt.Sprintf("Ubicación con código '%s' no encontrada.", codigo))
	}
	if err != nil {
		r.logger.Error("Falla al buscar ubicación por código en el DB.", err)
		return domain.Ubicacion{}, errors.NewDBError("Falla al buscar la ubicación por código", err)
	}
	return u, nil
}

// ListarUbicaciones retorna todas las ubicaciones ordenadas por nombre.
func (r *ReferenciaRepository) ListarUbicaciones(ctx context.Context) ([]domain.Ubicacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT id, codigo, nombre, tipo, activa, created_at, updated_at FROM ubicaciones ORDER BY nombre`)
	if err != nil {
		r.logger.Error("Falla al listar ubicaciones.", err)
		return nil, errors.NewDBError("Falla al listar ubicaciones", err)
	}
	defer rows.Close()

	var ubicaciones []domain.Ubicacion
	for rows.Next() {
		var u domain.Ubicacion
		if err := rows.Scan(&u.ID, &u.Codigo, &u.Nombre, &u.Tipo, &u.Activa, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, errors.NewDBError("Falla al mapear ubicaciones del DB", err)
		}
		ubicaciones = append(ubicaciones, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración de ubicaciones", err)
	}
	return ubicaciones, nil
}

// CrearUbicacion inserta una nueva unidad administrativa.
func (r *ReferenciaRepository) CrearUbicacion(ctx context.Context, u domain.Ubicacion) (domain.Ubicacion, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
        INSERT INTO ubicaciones (id, codigo, nombre, tipo, activa, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query, u.ID, u.Codigo, u.Nombre, u.Tipo, u.Activa, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Ubicacion{}, errors.NewConflictError(fmt.Sprintf("El código de ubicación '%s' ya existe.", u.Codigo))
		}
		r.logger.Error("Falla al insertar ubicación.", err)
		return domain.Ubicacion{}, errors.NewDBError("Falla al crear la ubicación", err)
	}

	r.logger.Info("Ubicación creada con éxito.", map[string]interface{}{"id": u.ID, "codigo": u.Codigo})
	return u, nil
}

// --- Responsables ---

// ObtenerResponsable busca un responsable por id, con cache read-through.
func (r *ReferenciaRepository) ObtenerResponsable(ctx context.Context, id string) (domain.Responsable, error) {
	claveCache := "responsable:" + id
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, claveCache); err == nil {
			var resp domain.Responsable
			if err := json.Unmarshal([]byte(raw), &resp); err == nil {
				return resp, nil
			}
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, cedula, nombre, cargo, activo, created_at, updated_at FROM responsables WHERE id = $1`

	var resp domain.Responsable
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&resp.ID, &resp.Cedula, &resp.Nombre, &resp.Cargo, &resp.Activo, &resp.CreatedAt, &resp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Responsable{}, errors.NewNotFoundError(fmt.Sprintf("Responsable con ID %s no encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar responsable en el DB.", err)
		return domain.Responsable{}, errors.NewDBError("Falla al buscar el responsable", err)
	}

	r.guardarEnCache(ctx, claveCache, resp)
	return resp, nil
}

// ListarResponsables retorna todos los responsables ordenados por nombre.
func (r *ReferenciaRepository) ListarResponsables(ctx context.Context) ([]domain.Responsable, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT id, cedula, nombre, cargo, activo, created_at, updated_at FROM responsables ORDER BY nombre`)
	if err != nil {
		r.logger.Error("Falla al listar responsables.", err)
		return nil, errors.NewDBError("Falla al listar responsables", err)
	}
	defer rows.Close()

	var responsables []domain.Responsable
	for rows.Next() {
		var resp domain.Responsable
		if err := rows.Scan(&resp.ID, &resp.Cedula, &resp.Nombre, &resp.Cargo, &resp.Activo, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, errors.NewDBError("Falla al mapear responsables del DB", err)
		}
		responsables = append(responsables, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración de responsables", err)
	}
	return responsables, nil
}

// CrearResponsable inserta un nuevo responsable.
func (r *ReferenciaRepository) CrearResponsable(ctx context.Context, resp domain.Responsable) (domain.Responsable, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	resp.CreatedAt = now
	resp.UpdatedAt = now

	query := `
        INSERT INTO responsables (id, cedula, nombre, cargo, activo, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query, resp.ID, resp.Cedula, resp.Nombre, resp.Cargo, resp.Activo, resp.CreatedAt, resp.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Responsable{}, errors.NewConflictError(fmt.Sprintf("La cédula '%s' ya está registrada.", resp.Cedula))
		}
		r.logger.Error("Falla al insertar responsable.", err)
		return domain.Responsable{}, errors.NewDBError("Falla al crear el responsable", err)
	}

	r.logger.Info("Responsable creado con éxito.", map[string]interface{}{"id": resp.ID})
	return resp, nil
}

// --- Categorías ---

// ListarCategorias retorna todas las categorías de bienes ordenadas por nombre.
func (r *ReferenciaRepository) ListarCategorias(ctx context.Context) ([]domain.Categoria, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT id, nombre FROM categorias ORDER BY nombre`)
	if err != nil {
		r.logger.Error("Falla al listar categorías.", err)
		return nil, errors.NewDBError("Falla al listar categorías", err)
	}
	defer rows.Close()

	var categorias []domain.Categoria
	for rows.Next() {
		var c domain.Categoria
		if err := rows.Scan(&c.ID, &c.Nombre); err != nil {
			return nil, errors.NewDBError("Falla al mapear categorías del DB", err)
		}
		categorias = append(categorias, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error tras la iteración de categorías", err)
	}
	return categorias, nil
}

// CrearCategoria inserta una nueva categoría de clasificación.
func (r *ReferenciaRepository) CrearCategoria(ctx context.Context, c domain.Categoria) (domain.Categoria, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := r.DB.ExecContext(ctxTimeout, `INSERT INTO categorias (id, nombre) VALUES ($1, $2)`, c.ID, c.Nombre)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Categoria{}, errors.NewConflictError(fmt.Sprintf("La categoría '%s' ya existe.", c.Nombre))
		}
		r.logger.Error("Falla al insertar categoría.", err)
		return domain.Categoria{}, errors.NewDBError("Falla al crear la categoría", err)
	}
	return c, nil
}

// guardarEnCache serializa y guarda el valor; un fallo acá solo degrada el cache.
func (r *ReferenciaRepository) guardarEnCache(ctx context.Context, clave string, valor interface{}) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(valor)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, clave, string(raw), r.cacheTTL); err != nil {
		r.logger.Debug("No se pudo guardar en cache.", map[string]interface{}{"clave": clave, "error": err.Error()})
	}
}
