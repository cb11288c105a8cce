package repository

import "design-pro/internal/models"

type RequestFilter struct {
	OwnerID string        // exact, empty = any owner
	Status  models.Status // exact, empty = any status
	Limit   int           // 0 = no limit
	Offset  int
}
