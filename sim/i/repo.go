package i

import (
	"github.com/google/uuid"

	"github.com/guilhemriera/Parallel-Ants-Project/domain"
)

// RunRepo defines the persistence operations for run records.
type RunRepo interface {
	// Save inserts or updates a run record.
	Save(run *domain.RunRecord) error

	// ByID retrieves a run record by its unique ID.
	ByID(id uuid.UUID) (*domain.RunRecord, error)
}
