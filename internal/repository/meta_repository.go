package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// MetaRepository manages the metadata catalogs backing recruitment: programs,
// stage definitions, country codes and locations. Metadata entities are
// soft-deactivated, never hard-deleted.
type MetaRepository struct {
	db *sqlx.DB
}

// NewMetaRepository constructs a MetaRepository.
func NewMetaRepository(db *sqlx.DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// ListPrograms returns programs, optionally restricted to active rows.
func (r *MetaRepository) ListPrograms(ctx context.Context, activeOnly bool) ([]models.Program, error) {
	query := `SELECT id, name, code, active, created_at, updated_at FROM programs`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindProgram fetches a program by identifier.
func (r *MetaRepository) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, name, code, active, created_at, updated_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// CreateProgram inserts a program.
func (r *MetaRepository) CreateProgram(ctx context.Context, program *models.Program) error {
	stampNew(&program.ID, &program.CreatedAt, &program.UpdatedAt)
	const query = `INSERT INTO programs (id, name, code, active, created_at, updated_at) VALUES (:id, :name, :code, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// UpdateProgram modifies a program.
func (r *MetaRepository) UpdateProgram(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET name = :name, code = :code, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

// DeactivateProgram soft-deletes a program.
func (r *MetaRepository) DeactivateProgram(ctx context.Context, id string) error {
	return r.deactivate(ctx, "programs", id)
}

// ListStageMeta returns stage definitions ordered by declared order.
func (r *MetaRepository) ListStageMeta(ctx context.Context, activeOnly bool) ([]models.StageMeta, error) {
	query := `SELECT id, name, stage_order, active, created_at, updated_at FROM stage_meta`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY stage_order ASC`
	var stages []models.StageMeta
	if err := r.db.SelectContext(ctx, &stages, query); err != nil {
		return nil, fmt.Errorf("list stage meta: %w", err)
	}
	return stages, nil
}

// CreateStageMeta inserts a stage definition.
func (r *MetaRepository) CreateStageMeta(ctx context.Context, meta *models.StageMeta) error {
	stampNew(&meta.ID, &meta.CreatedAt, &meta.UpdatedAt)
	const query = `INSERT INTO stage_meta (id, name, stage_order, active, created_at, updated_at) VALUES (:id, :name, :stage_order, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meta); err != nil {
		return fmt.Errorf("create stage meta: %w", err)
	}
	return nil
}

// UpdateStageMeta modifies a stage definition.
func (r *MetaRepository) UpdateStageMeta(ctx context.Context, meta *models.StageMeta) error {
	meta.UpdatedAt = time.Now().UTC()
	const query = `UPDATE stage_meta SET name = :name, stage_order = :stage_order, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, meta); err != nil {
		return fmt.Errorf("update stage meta: %w", err)
	}
	return nil
}

// DeactivateStageMeta soft-deletes a stage definition.
func (r *MetaRepository) DeactivateStageMeta(ctx context.Context, id string) error {
	return r.deactivate(ctx, "stage_meta", id)
}

// ListCountryCodes returns dialing prefixes.
func (r *MetaRepository) ListCountryCodes(ctx context.Context, activeOnly bool) ([]models.CountryCode, error) {
	query := `SELECT id, country, prefix, active, created_at, updated_at FROM country_codes`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY country ASC`
	var codes []models.CountryCode
	if err := r.db.SelectContext(ctx, &codes, query); err != nil {
		return nil, fmt.Errorf("list country codes: %w", err)
	}
	return codes, nil
}

// FindCountryCode fetches a dialing prefix by identifier.
func (r *MetaRepository) FindCountryCode(ctx context.Context, id string) (*models.CountryCode, error) {
	const query = `SELECT id, country, prefix, active, created_at, updated_at FROM country_codes WHERE id = $1`
	var code models.CountryCode
	if err := r.db.GetContext(ctx, &code, query, id); err != nil {
		return nil, err
	}
	return &code, nil
}

// CreateCountryCode inserts a dialing prefix.
func (r *MetaRepository) CreateCountryCode(ctx context.Context, code *models.CountryCode) error {
	stampNew(&code.ID, &code.CreatedAt, &code.UpdatedAt)
	const query = `INSERT INTO country_codes (id, country, prefix, active, created_at, updated_at) VALUES (:id, :country, :prefix, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("create country code: %w", err)
	}
	return nil
}

// UpdateCountryCode modifies a dialing prefix.
func (r *MetaRepository) UpdateCountryCode(ctx context.Context, code *models.CountryCode) error {
	code.UpdatedAt = time.Now().UTC()
	const query = `UPDATE country_codes SET country = :country, prefix = :prefix, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("update country code: %w", err)
	}
	return nil
}

// DeactivateCountryCode soft-deletes a dialing prefix.
func (r *MetaRepository) DeactivateCountryCode(ctx context.Context, id string) error {
	return r.deactivate(ctx, "country_codes", id)
}

// ListLocations returns sites.
func (r *MetaRepository) ListLocations(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM locations`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// CreateLocation inserts a site.
func (r *MetaRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	stampNew(&location.ID, &location.CreatedAt, &location.UpdatedAt)
	const query = `INSERT INTO locations (id, name, active, created_at, updated_at) VALUES (:id, :name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// UpdateLocation modifies a site.
func (r *MetaRepository) UpdateLocation(ctx context.Context, location *models.Location) error {
	location.UpdatedAt = time.Now().UTC()
	const query = `UPDATE locations SET name = :name, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// DeactivateLocation soft-deletes a site.
func (r *MetaRepository) DeactivateLocation(ctx context.Context, id string) error {
	return r.deactivate(ctx, "locations", id)
}

func (r *MetaRepository) deactivate(ctx context.Context, table, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET active = FALSE, updated_at = $2 WHERE id = $1`, table)
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate %s row: %w", table, err)
	}
	return nil
}

func stampNew(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
