package ops

import (
	"context"
	"strconv"

	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/persist"
)

// AddHistoryInput contains parameters for the AddHistory operation.
type AddHistoryInput struct {
	Code *string // default: the editor text
}

// AddHistory saves a snapshot of the editor text (or of Code).
func (s *Session) AddHistory(ctx context.Context, input AddHistoryInput) (*persist.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.ws.Text()
	if input.Code != nil {
		code = *input.Code
	}
	snap, err := s.persist.AddSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListHistoryInput contains parameters for the ListHistory operation.
type ListHistoryInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListHistoryOutput contains the result of the ListHistory operation.
type ListHistoryOutput struct {
	Items      []persist.Snapshot `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// ListHistory returns saved snapshots newest first.
func (s *Session) ListHistory(ctx context.Context, input ListHistoryInput) (*ListHistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	offset := max(input.Offset, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.persist.History(ctx)
	if err != nil {
		return nil, err
	}

	total := len(all)
	start := min(offset, total)
	end := min(start+limit, total)
	items := all[start:end]
	if items == nil {
		items = []persist.Snapshot{}
	}

	return &ListHistoryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "created_desc",
	}, nil
}

// SnapshotInput addresses one snapshot.
type SnapshotInput struct {
	ID int64
}

// ShowHistory returns one snapshot.
func (s *Session) ShowHistory(ctx context.Context, input SnapshotInput) (*persist.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(ctx, input.ID)
}

// LoadHistory replaces the editor text with a snapshot's code. Derived
// results are cleared and an active file receives the code.
func (s *Session) LoadHistory(ctx context.Context, input SnapshotInput) (*EditorOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	s.ws.LoadSnapshot(snap.Code)
	return s.editor(), nil
}

// DeleteHistory removes one snapshot.
func (s *Session) DeleteHistory(ctx context.Context, input SnapshotInput) (*DeleteOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.persist.DeleteSnapshot(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	id := strconv.FormatInt(input.ID, 10)
	if !ok {
		return nil, errors.NewNotFound("snapshot", id)
	}
	return &DeleteOutput{Deleted: true, ID: id, Selection: s.ws.Selection()}, nil
}

// ClearHistoryOutput contains the result of the ClearHistory operation.
type ClearHistoryOutput struct {
	Cleared int `json:"cleared"`
}

// ClearHistory removes every snapshot.
func (s *Session) ClearHistory(ctx context.Context) (*ClearHistoryOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.persist.History(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.persist.ClearHistory(ctx); err != nil {
		return nil, err
	}
	return &ClearHistoryOutput{Cleared: len(all)}, nil
}

func (s *Session) snapshot(ctx context.Context, id int64) (*persist.Snapshot, error) {
	snap, ok, err := s.persist.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound("snapshot", strconv.FormatInt(id, 10))
	}
	return &snap, nil
}
