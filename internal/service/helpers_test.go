package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"design-pro/internal/models"
	"design-pro/internal/repository/memory"
	"design-pro/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	admin = models.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	alice = models.Identity{UserID: "alice", Role: models.RoleUser}
	bob   = models.Identity{UserID: "bob", Role: models.RoleUser}
)

type fixture struct {
	db         *memory.DB
	store      *storage.MemoryStore
	requests   *RequestService
	categories *CategoryService
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:    memory.New(),
		store: storage.NewMemoryStore(),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.requests = NewRequestService(f.db.Requests(), f.db.Categories(), f.store, zerolog.Nop())
	// every read of the clock moves it forward so timestamps are ordered
	f.requests.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	f.categories = NewCategoryService(f.db.Categories(), f.store, zerolog.Nop())
	return f
}

func image(name string, size int64) *storage.File {
	return &storage.File{Name: name, Size: size, Body: strings.NewReader("image-bytes")}
}

func (f *fixture) create(t *testing.T, owner models.Identity, title, categoryID string) *models.Request {
	t.Helper()
	r, err := f.requests.Create(context.Background(), owner, CreateRequestInput{
		Title:       title,
		Description: "please redesign",
		CategoryID:  categoryID,
		Photo:       image("room.jpg", 1024),
	})
	require.NoError(t, err)
	return r
}

// at returns a request owned by alice that has reached status st.
func (f *fixture) at(t *testing.T, st models.Status) *models.Request {
	t.Helper()
	r := f.create(t, alice, "room", "")
	ctx := context.Background()
	var err error
	switch st {
	case models.StatusInProgress:
		r, err = f.requests.Transition(ctx, admin, r.ID, TransitionInput{Status: "in_progress", Comment: "taking it"})
	case models.StatusDone:
		r, err = f.requests.Transition(ctx, admin, r.ID, TransitionInput{Status: "done", DesignImage: image("design.png", 2048)})
	}
	require.NoError(t, err)
	require.Equal(t, st, r.Status)
	return r
}

func (f *fixture) get(t *testing.T, id string) *models.Request {
	t.Helper()
	r, err := f.db.Requests().Get(context.Background(), id)
	require.NoError(t, err)
	return r
}
