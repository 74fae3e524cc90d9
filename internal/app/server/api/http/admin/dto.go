package admin

import "timeline/internal/domain/sync"

type migrateInput struct{}

type migrateOutput struct {
	Body *sync.MigrationReport
}
