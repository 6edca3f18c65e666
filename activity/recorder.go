// Package activity writes the audit trail and streams it to live viewers.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"talentdesk/logdiff"
	"talentdesk/models"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Appender persists activity entries.
type Appender interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
}

// Entry describes one user or system action. A zero UserID records a
// system action. Before and After are entity snapshots; when both are
// set only the differing fields are kept.
type Entry struct {
	UserID       uint
	Action       string
	ResourceType string
	ResourceID   string
	Before       any
	After        any
	Extra        map[string]any
}

// bookkeeping keys never shown in a diff.
var ignoredKeys = []string{"id", "public_id", "created_at", "updated_at", "deleted_at", "company", "batch"}

type Recorder struct {
	store  Appender
	hub    *Hub
	logger *logrus.Entry
}

func NewRecorder(store Appender, hub *Hub, logger *logrus.Entry) *Recorder {
	return &Recorder{store: store, hub: hub, logger: logger}
}

// Record appends the entry and publishes it to the hub.
func (r *Recorder) Record(ctx context.Context, e Entry) (*models.ActivityLog, error) {
	if !models.ValidAction(e.Action) {
		return nil, fmt.Errorf("unknown action type %q", e.Action)
	}
	meta, err := Metadata(e)
	if err != nil {
		return nil, err
	}

	log := &models.ActivityLog{
		ActionType:   e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Metadata:     meta,
	}
	if e.UserID != 0 {
		uid := e.UserID
		log.UserID = &uid
	}
	if err := r.store.Append(ctx, log); err != nil {
		return nil, err
	}

	if r.hub != nil {
		n := r.hub.Publish(*log)
		r.logger.WithFields(logrus.Fields{
			"action":    log.ActionType,
			"resource":  log.ResourceType,
			"delivered": n,
		}).Debug("Activity published")
	}
	return log, nil
}

// Metadata builds the JSON payload stored with an entry.
func Metadata(e Entry) (datatypes.JSON, error) {
	meta := map[string]any{}
	if e.Before != nil || e.After != nil {
		snap, err := logdiff.Snapshot(e.Before, e.After)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", e.ResourceType, err)
		}
		for _, side := range []string{"before", "after"} {
			obj, ok := snap[side].(map[string]any)
			if !ok {
				continue
			}
			for _, k := range ignoredKeys {
				delete(obj, k)
			}
			meta[side] = obj
		}
	}
	for k, v := range e.Extra {
		meta[k] = v
	}
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}
