package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel carries the surrogate key and timestamps of per-user records.
// Learner records are never deleted, so there is no soft-delete column.
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func GenerateUUID() string {
	return uuid.New().String()
}
