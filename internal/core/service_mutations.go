package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/roster/internal/logging"
)

// Create inserts a new record and returns its id.
// Both name and email must be present; empty strings are accepted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (id int64, err error) {
	defer func() { s.metrics.observe("create", err) }()

	if err := validateCreate(req); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(tx Tx) error {
		newID, err := tx.Insert(ctx, NewRecord{Name: *req.Name, Email: *req.Email})
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("record created", "id", id)
	return id, nil
}

// Update overwrites the fields present in req on the record with req.ID.
// Absent fields are left unchanged. The transaction is committed even when
// no field is present.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (err error) {
	defer func() { s.metrics.observe("update", err) }()

	if req.ID == nil {
		return missingField("id")
	}
	id := *req.ID
	fields := Fields{Name: req.Name, Email: req.Email}

	err = s.withTx(ctx, func(tx Tx) error {
		found, err := tx.UpdateFields(ctx, id, fields)
		if err != nil {
			return fmt.Errorf("update record %d: %w", id, err)
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("record updated",
		"id", id,
		"name_changed", fields.Name != nil,
		"email_changed", fields.Email != nil,
	)
	return nil
}

// Delete removes the record with req.ID.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) (err error) {
	defer func() { s.metrics.observe("delete", err) }()

	if req.ID == nil {
		return missingField("id")
	}
	id := *req.ID

	err = s.withTx(ctx, func(tx Tx) error {
		found, err := tx.DeleteByID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete record %d: %w", id, err)
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("record deleted", "id", id)
	return nil
}

// BatchDelete removes every record whose id is in req.IDs and returns the
// number of records deleted. Ids without a record are ignored.
//
// Any failure rolls the transaction back and is returned as an
// InternalError carrying the failure message.
func (s *Service) BatchDelete(ctx context.Context, req BatchDeleteRequest) (deleted int64, err error) {
	defer func() { s.metrics.observe("batch_delete", err) }()

	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		return 0, &ValidationError{Field: "ids", Message: "no ids provided"}
	}

	logger := logging.WithFields(ctx, "requested", len(ids))

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, &InternalError{Op: "batch delete", Err: err}
	}

	deleted, err = tx.DeleteByIDs(ctx, ids)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Warn("batch delete rollback failed", "error", rbErr)
		}
		logger.Error("batch delete failed", "error", err)
		return 0, &InternalError{Op: "batch delete", Err: err}
	}

	logger.Info("records batch deleted", "deleted", deleted)
	return deleted, nil
}

// uniqueIDs returns ids without duplicates, preserving first occurrence.
func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
