package collab

import (
	"encoding/json"
	"log"

	edomain "github.com/arkiform/go-plan-backend/internal/editor/domain"
)

// remoteEdit is a structural change relayed from another collaborator.
// Edits arrive in relay order and apply last-write-wins at the store; merge
// semantics for simultaneous edits of the same element are deliberately
// undecided.
type remoteEdit struct {
	Kind      string           `json:"kind"`
	LevelID   string           `json:"level_id"`
	Wall      *edomain.Wall    `json:"wall,omitempty"`
	WallID    string           `json:"wall_id,omitempty"`
	Comment   *edomain.Comment `json:"comment,omitempty"`
	CommentID string           `json:"comment_id,omitempty"`
	Author    string           `json:"author,omitempty"`
	Text      string           `json:"text,omitempty"`
	Resolved  bool             `json:"resolved,omitempty"`
}

// handleRemoteEdit routes a remote structural edit through the mutation API
// so it is validated, undoable and dirty-tracked exactly like a local edit.
// A rejected edit is dropped with a log line; the document stays consistent.
func (ch *Channel) handleRemoteEdit(payload json.RawMessage) {
	var edit remoteEdit
	if err := json.Unmarshal(payload, &edit); err != nil {
		log.Printf("collab: drop malformed remote edit: %v", err)
		return
	}

	var err error
	switch edit.Kind {
	case "add_wall":
		if edit.Wall == nil {
			return
		}
		_, err = ch.sess.Store.AddWall(edit.LevelID, *edit.Wall)
	case "update_wall":
		if edit.Wall == nil {
			return
		}
		err = ch.sess.Store.UpdateWall(edit.LevelID, *edit.Wall)
	case "delete_wall":
		err = ch.sess.Store.DeleteWall(edit.LevelID, edit.WallID)
	case "add_comment":
		if edit.Comment == nil {
			return
		}
		_, err = ch.sess.Store.AddComment(edit.LevelID, *edit.Comment)
	case "reply_comment":
		err = ch.sess.Store.ReplyToComment(edit.LevelID, edit.CommentID, edit.Author, edit.Text)
	case "resolve_comment":
		err = ch.sess.Store.SetCommentResolved(edit.LevelID, edit.CommentID, edit.Resolved)
	default:
		log.Printf("collab: unknown remote edit kind %q", edit.Kind)
		return
	}

	if err != nil {
		log.Printf("collab: remote %s rejected: %v", edit.Kind, err)
	}
}
