package service

import "design-pro/internal/models"

// transitions lists the statuses reachable from each status. done has none.
var transitions = map[models.Status][]models.Status{
	models.StatusNew:        {models.StatusInProgress, models.StatusDone},
	models.StatusInProgress: {models.StatusDone},
}

func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses an admin may move a request to.
func NextStatuses(from models.Status) []models.Status {
	return append([]models.Status(nil), transitions[from]...)
}
