package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/util"
)

// VersionRepository persists immutable project versions. Version numbers are
// monotonically increasing per project; the projects row keeps a pointer to
// the current version.
type VersionRepository struct {
	db *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) SaveVersion(ctx context.Context, userUID, projectPublicID, message string, snapshot json.RawMessage) (*domain.ProjectVersion, error) {
	if strings.TrimSpace(userUID) == "" {
		return nil, fmt.Errorf("user uid required")
	}
	if strings.TrimSpace(projectPublicID) == "" {
		return nil, fmt.Errorf("project public_id required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.Validationf("commit message required")
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("snapshot required")
	}

	id, err := util.NewTextID("pver")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var ok string
	err = tx.QueryRowContext(ctx, `
select public_id
from projects
where public_id = $1
  and owner_uid = $2
  and deleted_at is null
for update
`, projectPublicID, userUID).Scan(&ok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var next int
	if err := tx.QueryRowContext(ctx, `
select coalesce(max(version_number), 0) + 1
from project_versions
where project_public_id = $1
`, projectPublicID).Scan(&next); err != nil {
		return nil, err
	}

	ver := domain.ProjectVersion{
		ID:              id,
		ProjectPublicID: projectPublicID,
		VersionNumber:   next,
		Message:         strings.TrimSpace(message),
		Snapshot:        snapshot,
		CreatedBy:       userUID,
	}

	err = tx.QueryRowContext(ctx, `
insert into project_versions (
  id, project_public_id, version_number, message, snapshot, created_by
)
values ($1, $2, $3, $4, $5::jsonb, $6)
returning created_at
`, id, projectPublicID, next, ver.Message, string(snapshot), userUID).Scan(&ver.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
update projects
set current_version_id = $1,
    updated_at = now()
where public_id = $2
  and deleted_at is null
`, id, projectPublicID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &ver, nil
}

// Latest returns the most recent version including its snapshot.
func (r *VersionRepository) Latest(ctx context.Context, projectPublicID string) (*domain.ProjectVersion, error) {
	if strings.TrimSpace(projectPublicID) == "" {
		return nil, fmt.Errorf("project public_id required")
	}

	var ver domain.ProjectVersion
	ver.ProjectPublicID = projectPublicID

	var snapshotText string
	err := r.db.QueryRowContext(ctx, `
select id, version_number, message, snapshot::text, created_by, created_at
from project_versions
where project_public_id = $1
order by version_number desc
limit 1
`, projectPublicID).Scan(
		&ver.ID, &ver.VersionNumber, &ver.Message,
		&snapshotText, &ver.CreatedBy, &ver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	ver.Snapshot = json.RawMessage(snapshotText)
	return &ver, nil
}

// Prune deletes versions beyond the newest keep per project. The version a
// project currently points at is always retained. Returns rows deleted.
func (r *VersionRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1")
	}

	res, err := r.db.ExecContext(ctx, `
delete from project_versions pv
using (
  select id,
         row_number() over (
           partition by project_public_id
           order by version_number desc
         ) as rn
  from project_versions
) ranked
where pv.id = ranked.id
  and ranked.rn > $1
  and pv.id not in (
    select current_version_id from projects where current_version_id is not null
  )
`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns version metadata, newest first, without snapshots.
func (r *VersionRepository) List(ctx context.Context, projectPublicID string, limit int) ([]domain.ProjectVersion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
select id, version_number, message, created_by, created_at
from project_versions
where project_public_id = $1
order by version_number desc
limit $2
`, projectPublicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProjectVersion
	for rows.Next() {
		ver := domain.ProjectVersion{ProjectPublicID: projectPublicID}
		if err := rows.Scan(&ver.ID, &ver.VersionNumber, &ver.Message, &ver.CreatedBy, &ver.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ver)
	}
	return out, rows.Err()
}
