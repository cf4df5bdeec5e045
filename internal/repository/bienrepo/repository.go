package bienrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"siab/internal/domain"
	"siab/internal/errors"
	"siab/internal/pkg/database"
	"siab/internal/pkg/logger"
)

// BienRepository implementa el acceso a datos del registro de bienes.
//
// Este repositorio solo muta campos que no forman parte de la custodia. El
// par ubicación/responsable y el estado DESINCORPORADO se escriben dentro de
// las transacciones de los repositorios de flujo (asignación, transferencia,
// desincorporación), con la excepción de EliminarLogico que implementa la
// baja directa del endpoint de eliminación.
type BienRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewBienRepository crea y retorna una nueva instancia del repositorio de bienes.
func NewBienRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *BienRepository {
	return &BienRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const columnasBien = `id, codigo_interno, codigo_barras, descripcion, marca, modelo, serial,
        fecha_adquisicion, estado, condicion, ubicacion_id, responsable_id, categoria_id,
        creado_por, created_at, updated_at`

// escanearBien mapea una fila de bienes hacia el dominio.
func escanearBien(row interface{ Scan(...interface{}) error }) (domain.Bien, error) {
	var b domain.Bien
	var fechaAdq sql.NullTime
	err := row.Scan(
		&b.ID, &b.CodigoInterno, &b.CodigoBarras, &b.Descripcion, &b.Marca, &b.Modelo, &b.Serial,
		&fechaAdq, &b.Estado, &b.Condicion, &b.UbicacionID, &b.ResponsableID, &b.CategoriaID,
		&b.CreadoPor, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.Bien{}, err
	}
	if fechaAdq.Valid {
		b.FechaAdquisicion = &fechaAdq.Time
	}
	return b, nil
}

// Crear inserta un nuevo bien en el inventario.
func (r *BienRepository) Crear(ctx context.Context, bien domain.Bien) (domain.Bien, error) {
	r.logger.Debug("Insertando bien en el repositorio.", map[string]interface{}{"codigo_interno": bien.CodigoInterno})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if bien.ID == "" {
		bien.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	bien.CreatedAt = now
	bien.UpdatedAt = now

	query := `
        INSERT INTO bienes (id, codigo_interno, codigo_barras, descripcion, marca, modelo, serial,
            fecha_adquisicion, estado, condicion, ubicacion_id, responsable_id, categoria_id,
            creado_por, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	var fechaAdq interface{}
	if bien.FechaAdquisicion != nil {
		fechaAdq = *bien.FechaAdquisicion
	}

	_, err := r.DB.ExecContext(ctxTimeout, query,
		bien.ID, bien.CodigoInterno, bien.CodigoBarras, bien.Descripcion, bien.Marca, bien.Modelo,
		bien.Serial, fechaAdq, bien.Estado, bien.Condicion, bien.UbicacionID, bien.ResponsableID,
		bien.CategoriaID, bien.CreadoPor, bien.CreatedAt, bien.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Código interno duplicado al crear bien.", map[string]interface{}{"codigo_interno": bien.CodigoInterno})
			return domain.Bien{}, errors.NewConflictError(fmt.Sprintf("El código interno '%s' ya está registrado.", bien.CodigoInterno))
		}
		r.logger.Error("Falla al insertar bien en el DB.", err)
		return domain.Bien{}, errors.NewDBError("Falla al crear el bien", err)
	}

	r.logger.Info("Bien creado con éxito.", map[string]interface{}{"id": bien.ID, "codigo_interno": bien.CodigoInterno})
	return bien, nil
}

// BuscarPorID busca un bien por su id.
func (r *BienRepository) BuscarPorID(ctx context.Context, id string) (domain.Bien, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + columnasBien + ` FROM bienes WHERE id = $1`

	bien, err := escanearBien(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Bien no encontrado.", map[string]interface{}{"id": id})
		return domain.Bien{}, errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar bien en el DB.", err)
		return domain.Bien{}, errors.NewDBError("Falla al buscar el bien", err)
	}

	return bien, nil
}

// Listar retorna los bienes que satisfacen el filtro, con paginación.
func (r *BienRepository) Listar(ctx context.Context, filtro domain.FiltroBienes) ([]domain.Bien, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var condiciones []string
	var args []interface{}

	agregar := func(cond string, val interface{}) {
		args = append(args, val)
		condiciones = append(condiciones, fmt.Sprintf(cond, len(args)))
	}

	if filtro.UbicacionID != "" {
		agregar("ubicacion_id = $%d", filtro.UbicacionID)
	}
	if filtro.Estado != "" {
		agregar("estado = $%d", string(filtro.Estado))
	}
	if filtro.Condicion != "" {
		agregar("condicion = $%d", string(filtro.Condicion))
	}
	if filtro.CategoriaID != "" {
		agregar("categoria_id = $%d", filtro.CategoriaID)
	}
	if filtro.Texto != "" {
		args = append(args, filtro.Texto)
		n := len(args)
		condiciones = append(condiciones, fmt.Sprintf(
			"(codigo_interno ILIKE '%%' || $%d || '%%' OR descripcion ILIKE '%%' || $%d || '%%')", n, n))
	}

	query := `SELECT ` + columnasBien + ` FROM bienes`
	if len(condiciones) > 0 {
		query += " WHERE " + strings.Join(condiciones, " AND ")
	}
	query += " ORDER BY codigo_interno"

	limit := filtro.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filtro.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falla al ejecutar el listado de bienes.", err)
		return nil, errors.NewDBError("Falla al listar bienes", err)
	}
	defer rows.Close()

	var bienes []domain.Bien
	for rows.Next() {
		bien, err := escanearBien(rows)
		if err != nil {
			r.logger.Error("Falla al mapear bien en la iteración del listado.", err)
			return nil, errors.NewDBError("Falla al mapear bienes del DB", err)
		}
		bienes = append(bienes, bien)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error tras iterar las filas de bienes.", err)
		return nil, errors.NewDBError("Error tras la iteración de bienes", err)
	}

	r.logger.Debug("Listado de bienes completado.", map[string]interface{}{"total": len(bienes)})
	return bienes, nil
}

// Actualizar aplica los campos editables (no de custodia) sobre un bien.
func (r *BienRepository) Actualizar(ctx context.Context, id string, cambios domain.ActualizacionBien) (domain.Bien, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var sets []string
	var args []interface{}

	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if cambios.Descripcion != nil {
		set("descripcion", *cambios.Descripcion)
	}
	if cambios.Marca != nil {
		set("marca", *cambios.Marca)
	}
	if cambios.Modelo != nil {
		set("modelo", *cambios.Modelo)
	}
	if cambios.Serial != nil {
		set("serial", *cambios.Serial)
	}
	if cambios.CodigoBarras != nil {
		set("codigo_barras", *cambios.CodigoBarras)
	}
	if cambios.Condicion != nil {
		set("condicion", string(*cambios.Condicion))
	}
	if cambios.FechaAdquisicion != nil {
		set("fecha_adquisicion", *cambios.FechaAdquisicion)
	}
	if cambios.CategoriaID != nil {
		set("categoria_id", *cambios.CategoriaID)
	}

	if len(sets) == 0 {
		return r.BuscarPorID(ctx, id)
	}

	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE bienes SET %s WHERE id = $%d RETURNING `+columnasBien,
		strings.Join(sets, ", "), len(args))

	bien, err := escanearBien(r.DB.QueryRowContext(ctxTimeout, query, args...))
	if err == sql.ErrNoRows {
		return domain.Bien{}, errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado para actualización.", id))
	}
	if err != nil {
		r.logger.Error("Falla al actualizar bien en el DB.", err)
		return domain.Bien{}, errors.NewDBError("Falla al actualizar el bien", err)
	}

	r.logger.Info("Bien actualizado con éxito.", map[string]interface{}{"id": id})
	return bien, nil
}

// EliminarLogico marca el bien como DESINCORPORADO sin borrar la fila.
// Es la baja directa del endpoint de eliminación, distinta del flujo formal
// de desincorporación.
func (r *BienRepository) EliminarLogico(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `UPDATE bienes SET estado = $1, updated_at = $2 WHERE id = $3`

	result, err := r.DB.ExecContext(ctxTimeout, query, domain.BienDesincorporado, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Falla al marcar bien como desincorporado.", err)
		return errors.NewDBError("Falla al eliminar el bien", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falla al verificar filas afectadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Bien con ID %s no encontrado para eliminación.", id))
	}

	r.logger.Info("Bien marcado como desincorporado.", map[string]interface{}{"id": id})
	return nil
}
