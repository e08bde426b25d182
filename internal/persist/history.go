package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
)

// Snapshot is one saved copy of the editor text. ID is the creation time in
// Unix milliseconds.
type Snapshot struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
}

const (
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	nameLayout      = "1/2/2006_3:04:05 PM"
)

// History returns saved snapshots newest first. Malformed data reads as an
// empty history.
func (a *Adapter) History(ctx context.Context) ([]Snapshot, error) {
	list, err := a.readHistory(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}

// Snapshot returns the snapshot with id.
func (a *Adapter) Snapshot(ctx context.Context, id int64) (Snapshot, bool, error) {
	list, err := a.readHistory(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	for _, s := range list {
		if s.ID == id {
			return s, true, nil
		}
	}
	return Snapshot{}, false, nil
}

// AddSnapshot appends code to the history. Ids are unique even when two
// snapshots are taken within the same millisecond.
func (a *Adapter) AddSnapshot(ctx context.Context, code string) (Snapshot, error) {
	list, err := a.readHistory(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	now := a.now()
	id := now.UnixMilli()
	for _, s := range list {
		if s.ID >= id {
			id = s.ID + 1
		}
	}
	snap := Snapshot{
		ID:        id,
		Code:      code,
		Timestamp: now.UTC().Format(timestampLayout),
		Name:      "Code_" + now.Format(nameLayout),
	}

	if err := a.writeHistory(ctx, append(list, snap)); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// DeleteSnapshot removes one snapshot. It reports false if id is unknown.
func (a *Adapter) DeleteSnapshot(ctx context.Context, id int64) (bool, error) {
	list, err := a.readHistory(ctx)
	if err != nil {
		return false, err
	}
	if !slices.ContainsFunc(list, func(s Snapshot) bool { return s.ID == id }) {
		return false, nil
	}
	list = slices.DeleteFunc(list, func(s Snapshot) bool { return s.ID == id })
	if err := a.writeHistory(ctx, list); err != nil {
		return false, err
	}
	return true, nil
}

// ClearHistory removes every snapshot.
func (a *Adapter) ClearHistory(ctx context.Context) error {
	if err := a.store.Delete(ctx, HistoryKey); err != nil {
		return storageErr("clear history", err)
	}
	return nil
}

// readHistory returns snapshots in stored (oldest first) order.
func (a *Adapter) readHistory(ctx context.Context) ([]Snapshot, error) {
	raw, ok, err := a.store.Get(ctx, HistoryKey)
	if err != nil {
		return nil, storageErr("read history", err)
	}
	if !ok {
		return []Snapshot{}, nil
	}
	var list []Snapshot
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("Warning: ignoring malformed history data: %v", err)
		return []Snapshot{}, nil
	}
	if list == nil {
		list = []Snapshot{}
	}
	return list, nil
}

func (a *Adapter) writeHistory(ctx context.Context, list []Snapshot) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := a.store.Set(ctx, HistoryKey, string(data)); err != nil {
		return storageErr("write history", err)
	}
	return nil
}
