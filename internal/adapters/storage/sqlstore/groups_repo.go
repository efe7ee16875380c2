package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

var groupColumns = []string{
	"id", "organization_id",
	"name", "description", "animal_ids",
	"priority", "current_foster_id",
	"created_at", "updated_at",
}

// GroupsRepo guarda animal_ids como un array JSON en texto (mantiene el orden).
type GroupsRepo struct {
	db *sql.DB
	d  query.Dialect
}

func NewGroupsRepo(db *sql.DB, d query.Dialect) *GroupsRepo {
	return &GroupsRepo{db: db, d: d}
}

func (r *GroupsRepo) Create(ctx context.Context, g animals.Group) error {
	ids := g.AnimalIDs
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("sqlstore: marshal animal_ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO animal_groups ("+strings.Join(groupColumns, ", ")+") VALUES ("+placeholders(r.d, 1, len(groupColumns))+")",
		g.ID,
		g.OrganizationID,
		g.Name,
		g.Description,
		string(raw),
		bind(r.d, g.Priority),
		nullString(g.CurrentFosterID),
		bind(r.d, g.CreatedAt.UTC()),
		bind(r.d, g.UpdatedAt.UTC()),
	)
	return wrapErr(err)
}

func (r *GroupsRepo) GetByID(ctx context.Context, orgID, id string) (animals.Group, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Group{}, animals.ErrNotFound
	}

	items, err := r.List(ctx, query.Where(
		query.Eq(query.FieldOrganizationID, orgID),
		query.Eq(query.FieldID, id),
	), query.ListOptions{Limit: 1})
	if err != nil {
		return animals.Group{}, err
	}
	if len(items) == 0 {
		return animals.Group{}, animals.ErrNotFound
	}
	return items[0], nil
}

func (r *GroupsRepo) List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]animals.Group, error) {
	st, err := query.BuildSelect(r.d, "animal_groups", groupColumns, pred, opts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := make([]animals.Group, 0)
	for rows.Next() {
		var (
			g                    animals.Group
			rawIDs               string
			fosterID             sql.NullString
			createdAt, updatedAt dbTime
		)
		if err := rows.Scan(
			&g.ID,
			&g.OrganizationID,
			&g.Name,
			&g.Description,
			&rawIDs,
			&g.Priority,
			&fosterID,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, wrapErr(err)
		}
		if err := json.Unmarshal([]byte(rawIDs), &g.AnimalIDs); err != nil {
			return nil, fmt.Errorf("sqlstore: group %s has malformed animal_ids: %w", g.ID, err)
		}
		g.CurrentFosterID = stringPtr(fosterID)
		g.CreatedAt = createdAt.Time
		g.UpdatedAt = updatedAt.Time
		out = append(out, g)
	}
	return out, wrapErr(rows.Err())
}

func (r *GroupsRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	st, err := query.BuildCount(r.d, "animal_groups", pred)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}
