package service

import (
	"testing"

	"design-pro/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []models.Status{models.StatusNew, models.StatusInProgress, models.StatusDone}
	allowed := map[[2]models.Status]bool{
		{models.StatusNew, models.StatusInProgress}:  true,
		{models.StatusNew, models.StatusDone}:        true,
		{models.StatusInProgress, models.StatusDone}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []models.Status{models.StatusInProgress, models.StatusDone}, NextStatuses(models.StatusNew))
	assert.Empty(t, NextStatuses(models.StatusDone))

	// callers must not be able to change the table
	next := NextStatuses(models.StatusInProgress)
	next[0] = models.StatusNew
	assert.False(t, CanTransition(models.StatusInProgress, models.StatusNew))
}
