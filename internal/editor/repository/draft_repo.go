package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "plan:draft:" // working autosave snapshot: plan:draft:{project_id}
	draftTTL       = 72 * time.Hour
)

// DraftRepository stores working autosave snapshots in Redis. Drafts are not
// user-visible versions; they exist so an interrupted session can resume
// without losing unversioned work.
type DraftRepository struct {
	client *redis.Client
}

func NewDraftRepository(client *redis.Client) *DraftRepository {
	return &DraftRepository{client: client}
}

func (r *DraftRepository) Save(ctx context.Context, projectPublicID string, snapshot json.RawMessage) error {
	if projectPublicID == "" {
		return fmt.Errorf("project public_id required")
	}
	if err := r.client.Set(ctx, draftKey(projectPublicID), []byte(snapshot), draftTTL).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Get returns the draft snapshot, or nil when none exists.
func (r *DraftRepository) Get(ctx context.Context, projectPublicID string) (json.RawMessage, error) {
	data, err := r.client.Get(ctx, draftKey(projectPublicID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return json.RawMessage(data), nil
}

// Delete drops the draft, typically after an explicit version save made it
// redundant.
func (r *DraftRepository) Delete(ctx context.Context, projectPublicID string) error {
	if err := r.client.Del(ctx, draftKey(projectPublicID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func draftKey(projectPublicID string) string {
	return draftKeyPrefix + projectPublicID
}
