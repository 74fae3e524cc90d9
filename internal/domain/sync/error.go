package sync

import "errors"

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrNoLegacyData  = errors.New("no legacy data")
	ErrInvalidQuery  = errors.New("invalid query")
)
