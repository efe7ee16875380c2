package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

var animalColumns = []string{
	"id", "organization_id",
	"name", "status", "sex_spay_neuter_status", "life_stage",
	"priority", "foster_visibility",
	"group_id", "current_foster_id",
	"date_of_birth", "created_at", "updated_at",
}

type AnimalsRepo struct {
	db  *sql.DB
	d   query.Dialect
	now func() time.Time
}

func NewAnimalsRepo(db *sql.DB, d query.Dialect) *AnimalsRepo {
	return &AnimalsRepo{db: db, d: d, now: time.Now}
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	sex := sql.NullString{}
	if a.SexSpayNeuterStatus != "" {
		sex = sql.NullString{String: string(a.SexSpayNeuterStatus), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO animals ("+strings.Join(animalColumns, ", ")+") VALUES ("+placeholders(r.d, 1, len(animalColumns))+")",
		a.ID,
		a.OrganizationID,
		a.Name,
		string(a.Status),
		sex,
		string(a.LifeStage),
		bind(r.d, a.Priority),
		string(a.FosterVisibility),
		nullString(a.GroupID),
		nullString(a.CurrentFosterID),
		bindTime(r.d, a.DateOfBirth),
		bind(r.d, a.CreatedAt.UTC()),
		bind(r.d, a.UpdatedAt.UTC()),
	)
	return wrapErr(err)
}

func (r *AnimalsRepo) GetByID(ctx context.Context, orgID, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	items, err := r.List(ctx, query.Where(
		query.Eq(query.FieldOrganizationID, orgID),
		query.Eq(query.FieldID, id),
	), query.ListOptions{Limit: 1})
	if err != nil {
		return animals.Animal{}, err
	}
	if len(items) == 0 {
		return animals.Animal{}, animals.ErrNotFound
	}
	return items[0], nil
}

func (r *AnimalsRepo) List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]animals.Animal, error) {
	st, err := query.BuildSelect(r.d, "animals", animalColumns, pred, opts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, wrapErr(rows.Err())
}

func (r *AnimalsRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	st, err := query.BuildCount(r.d, "animals", pred)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

// Update es read-modify-write sin transacción: gana la última escritura.
func (r *AnimalsRepo) Update(ctx context.Context, orgID, id string, patch animals.Patch) (animals.Animal, error) {
	current, err := r.GetByID(ctx, orgID, id)
	if err != nil {
		return animals.Animal{}, err
	}
	a := patch.Apply(current, r.now())

	p := r.d.Placeholder
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = `+p(1)+`,
			status = `+p(2)+`,
			priority = `+p(3)+`,
			foster_visibility = `+p(4)+`,
			group_id = `+p(5)+`,
			current_foster_id = `+p(6)+`,
			updated_at = `+p(7)+`
		WHERE id = `+p(8)+` AND organization_id = `+p(9),
		a.Name,
		string(a.Status),
		bind(r.d, a.Priority),
		string(a.FosterVisibility),
		nullString(a.GroupID),
		nullString(a.CurrentFosterID),
		bind(r.d, a.UpdatedAt.UTC()),
		a.ID,
		a.OrganizationID,
	)
	if err != nil {
		return animals.Animal{}, wrapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *AnimalsRepo) BatchUpdate(ctx context.Context, orgID string, ids []string, patch animals.Patch) []animals.BatchResult {
	out := make([]animals.BatchResult, 0, len(ids))
	for _, id := range ids {
		a, err := r.Update(ctx, orgID, id, patch)
		out = append(out, animals.BatchResult{ID: id, Animal: a, Err: err})
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var (
		a                         animals.Animal
		status, lifeStage, vis    string
		sex, groupID, fosterID    sql.NullString
		dob, createdAt, updatedAt dbTime
	)
	if err := row.Scan(
		&a.ID,
		&a.OrganizationID,
		&a.Name,
		&status,
		&sex,
		&lifeStage,
		&a.Priority,
		&vis,
		&groupID,
		&fosterID,
		&dob,
		&createdAt,
		&updatedAt,
	); err != nil {
		return animals.Animal{}, wrapErr(err)
	}

	a.Status = animals.Status(status)
	a.SexSpayNeuterStatus = animals.SexSpayNeuterStatus(sex.String)
	a.LifeStage = animals.LifeStage(lifeStage)
	a.FosterVisibility = animals.FosterVisibility(vis)
	a.GroupID = stringPtr(groupID)
	a.CurrentFosterID = stringPtr(fosterID)
	a.DateOfBirth = dob.ptr()
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return a, nil
}
