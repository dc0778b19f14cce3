// Package projects stores project metadata rows. The document contents live
// in version snapshots and working drafts, not here.
package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkiform/go-plan-backend/internal/util"
)

var ErrNotFound = errors.New("project not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Project struct {
	PublicID  string    `json:"public_id"`
	Name      string    `json:"name"`
	OwnerUID  string    `json:"owner_uid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Repo) Create(ctx context.Context, ownerUID, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	for i := 0; i < 5; i++ {
		publicID, err := util.NewTextID("plan")
		if err != nil {
			return nil, err
		}

		const q = `
insert into projects (public_id, owner_uid, name)
values ($1, $2, $3)
returning public_id, owner_uid, name, created_at, updated_at;
`
		var p Project
		err = r.db.QueryRow(ctx, q, publicID, ownerUID, name).
			Scan(&p.PublicID, &p.OwnerUID, &p.Name, &p.CreatedAt, &p.UpdatedAt)

		if err == nil {
			return &p, nil
		}

		// unique violation on public_id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *Repo) Get(ctx context.Context, ownerUID, publicID string) (*Project, error) {
	const q = `
select public_id, owner_uid, name, created_at, updated_at
from projects
where owner_uid = $1 and public_id = $2 and deleted_at is null;
`
	var p Project
	err := r.db.QueryRow(ctx, q, ownerUID, publicID).
		Scan(&p.PublicID, &p.OwnerUID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, ownerUID string) ([]Project, error) {
	const q = `
select public_id, owner_uid, name, created_at, updated_at
from projects
where owner_uid = $1 and deleted_at is null
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.PublicID, &p.OwnerUID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Rename(ctx context.Context, ownerUID, publicID, newName string) (*Project, error) {
	const q = `
update projects
set name = $3, updated_at = now()
where owner_uid = $1 and public_id = $2 and deleted_at is null
returning public_id, owner_uid, name, created_at, updated_at;
`
	var p Project
	err := r.db.QueryRow(ctx, q, ownerUID, publicID, newName).
		Scan(&p.PublicID, &p.OwnerUID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) SoftDelete(ctx context.Context, ownerUID, publicID string) (bool, error) {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where owner_uid = $1 and public_id = $2 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, ownerUID, publicID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
