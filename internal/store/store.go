// Package store implements typed persistence for the three entity kinds
// (User, Community, Message). Stores are keyed by stable logical ids and
// do not maintain cross-entity invariants; that is the refs package's job.
// Id-set append/remove primitives live here because document-level updates
// must be atomic at the store layer: each runs a row-scoped read-modify-
// write inside its own transaction.
package store

import (
	"errors"

	"threadloom/internal/models"

	"gorm.io/gorm"
)

// wrapDBError converts a raw gorm error into the shared error taxonomy.
func wrapDBError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
