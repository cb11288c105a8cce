package service

import (
	"context"
	"testing"

	"design-pro/internal/models"
	"design-pro/internal/repository"
	"design-pro/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countAll(t *testing.T, f *fixture) int {
	t.Helper()
	n, err := f.db.Requests().Count(context.Background(), repository.RequestFilter{})
	require.NoError(t, err)
	return n
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	cat, err := f.categories.Create(context.Background(), admin, "Interior")
	require.NoError(t, err)

	r, err := f.requests.Create(context.Background(), alice, CreateRequestInput{
		Title:       "  Living room  ",
		Description: "Scandinavian style",
		CategoryID:  cat.ID,
		Photo:       image("Room.PNG", 1500),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Living room", r.Title)
	assert.Equal(t, models.StatusNew, r.Status)
	assert.Equal(t, alice.UserID, r.OwnerID)
	assert.Equal(t, "Interior", r.CategoryName)
	assert.Equal(t, r.CreatedAt, r.EditDate)
	assert.True(t, f.store.Has(r.Photo))
	assert.Equal(t, f.store.URL(r.Photo), r.PhotoURL)
	assert.Empty(t, r.DesignImage)
}

func TestCreateRejectsBadPhotoWithoutPersisting(t *testing.T) {
	cases := []struct {
		name  string
		photo *storage.File
	}{
		{"gif", image("anim.gif", 1024)},
		{"too large", image("huge.jpg", storage.MaxImageSize+1)},
		{"missing", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.requests.Create(context.Background(), alice, CreateRequestInput{
				Title: "Kitchen", Description: "d", Photo: tc.photo,
			})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "photo")
			assert.Equal(t, 0, countAll(t, f))
			assert.Equal(t, 0, f.store.Len())
		})
	}
}

func TestCreateCollectsFieldErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.Create(context.Background(), alice, CreateRequestInput{
		Title:      " ",
		CategoryID: "cat-404",
		Photo:      image("a.png", 10),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "category")
	assert.NotContains(t, verr.Fields, "photo")
	assert.Equal(t, 0, f.store.Len())
}

func TestCreateAbortsOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailPut = true

	_, err := f.requests.Create(context.Background(), alice, CreateRequestInput{
		Title: "Kitchen", Description: "d", Photo: image("a.png", 10),
	})
	require.Error(t, err)
	assert.Equal(t, 0, countAll(t, f))
}

func TestCreateRemovesPhotoWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.db.FailWrites = true

	_, err := f.requests.Create(context.Background(), alice, CreateRequestInput{
		Title: "Kitchen", Description: "d", Photo: image("a.png", 10),
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}

func TestCreateRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.Create(context.Background(), models.Identity{}, CreateRequestInput{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForOwner(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, alice, "first", "")
	second := f.create(t, alice, "second", "")
	f.create(t, bob, "not mine", "")
	_, err := f.requests.Transition(context.Background(), admin, first.ID, TransitionInput{Status: "in_progress", Comment: "ok"})
	require.NoError(t, err)

	items, err := f.requests.ListForOwner(context.Background(), alice, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "newest first")
	assert.Equal(t, first.ID, items[1].ID)

	items, err = f.requests.ListForOwner(context.Background(), alice, "in_progress")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)

	_, err = f.requests.ListForOwner(context.Background(), alice, "closed")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
}

func TestDeleteNewRequest(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")

	require.NoError(t, f.requests.Delete(context.Background(), alice, r.ID))
	assert.Nil(t, f.get(t, r.ID))
	assert.False(t, f.store.Has(r.Photo))
}

func TestDeleteRejections(t *testing.T) {
	f := newFixture(t)
	fresh := f.create(t, alice, "room", "")

	assert.ErrorIs(t, f.requests.Delete(context.Background(), bob, fresh.ID), ErrForbidden)
	assert.NotNil(t, f.get(t, fresh.ID))

	assert.ErrorIs(t, f.requests.Delete(context.Background(), alice, "req-404"), ErrNotFound)

	for _, st := range []models.Status{models.StatusInProgress, models.StatusDone} {
		r := f.at(t, st)
		assert.ErrorIs(t, f.requests.Delete(context.Background(), alice, r.ID), ErrNotDeletable, string(st))
		assert.NotNil(t, f.get(t, r.ID), "request must survive a refused delete")
		assert.True(t, f.store.Has(r.Photo))
	}
}

func TestTransitionTable(t *testing.T) {
	all := []models.Status{models.StatusNew, models.StatusInProgress, models.StatusDone}
	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t)
				r := f.at(t, from)
				before := f.get(t, r.ID)

				_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{
					Status:      string(to),
					Comment:     "note",
					DesignImage: image("final.png", 100),
				})
				if CanTransition(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, f.get(t, r.ID).Status)
					return
				}
				require.Error(t, err)
				assert.Equal(t, before, f.get(t, r.ID), "rejected transition must not mutate")
			})
		}
	}
}

func TestTransitionToInProgressNeedsComment(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")

	_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "in_progress", Comment: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "comment")
	unchanged := f.get(t, r.ID)
	assert.Equal(t, models.StatusNew, unchanged.Status)
	assert.Equal(t, r.EditDate, unchanged.EditDate)

	got, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "in_progress", Comment: " measuring on Monday "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "measuring on Monday", got.Comment)
	assert.True(t, got.EditDate.After(r.EditDate))
	assert.Equal(t, r.CreatedAt, got.CreatedAt)
}

func TestTransitionToDoneNeedsDesignImage(t *testing.T) {
	for _, from := range []models.Status{models.StatusNew, models.StatusInProgress} {
		t.Run(string(from), func(t *testing.T) {
			f := newFixture(t)
			r := f.at(t, from)

			_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "done"})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "design_image")

			_, err = f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "done", DesignImage: image("x.bmp", 10)})
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "design_image")
			assert.Equal(t, from, f.get(t, r.ID).Status)

			got, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "done", DesignImage: image("final.jpeg", 4096)})
			require.NoError(t, err)
			assert.Equal(t, models.StatusDone, got.Status)
			assert.NotEmpty(t, got.DesignImage)
			assert.True(t, f.store.Has(got.DesignImage))
			assert.Equal(t, f.store.URL(got.DesignImage), got.DesignImageURL)
			assert.True(t, got.EditDate.After(r.EditDate))
			assert.Equal(t, got.DesignImage, f.get(t, r.ID).DesignImage)
		})
	}
}

func TestDoneIsTerminal(t *testing.T) {
	f := newFixture(t)
	r := f.at(t, models.StatusDone)

	for _, to := range []string{"new", "in_progress", "done"} {
		_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{
			Status: to, Comment: "again", DesignImage: image("again.png", 10),
		})
		assert.ErrorIs(t, err, ErrTerminalStatus, to)
	}
	assert.Equal(t, r.EditDate, f.get(t, r.ID).EditDate)
}

func TestTransitionBackwardIsNotAllowed(t *testing.T) {
	f := newFixture(t)
	r := f.at(t, models.StatusInProgress)

	_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "new"})
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
}

func TestTransitionRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")

	_, err := f.requests.Transition(context.Background(), alice, r.ID, TransitionInput{Status: "in_progress", Comment: "me"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.StatusNew, f.get(t, r.ID).Status)
}

func TestTransitionUnknownStatusAndRequest(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")

	_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "archived"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.requests.Transition(context.Background(), admin, "req-404", TransitionInput{Status: "done"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionStorageFailureLeavesRequestUntouched(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")
	f.store.FailPut = true

	_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "done", DesignImage: image("d.png", 10)})
	require.Error(t, err)
	assert.Equal(t, models.StatusNew, f.get(t, r.ID).Status)
}

func TestTransitionUpdateFailureRemovesDesignImage(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, alice, "room", "")
	stored := f.store.Len()
	f.db.FailWrites = true

	_, err := f.requests.Transition(context.Background(), admin, r.ID, TransitionInput{Status: "done", DesignImage: image("d.png", 10)})
	require.Error(t, err)
	assert.Equal(t, stored, f.store.Len())
	assert.Equal(t, models.StatusNew, f.get(t, r.ID).Status)
}

func TestTransitionMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	f.requests.WithMetrics(reg)

	f.at(t, models.StatusDone)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.requests.transitions.WithLabelValues("new", "done")))
}

func TestListAllAndSummary(t *testing.T) {
	f := newFixture(t)
	f.create(t, alice, "a", "")
	f.create(t, bob, "b", "")
	f.at(t, models.StatusInProgress)

	_, err := f.requests.ListAll(context.Background(), alice, "", 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	page, err := f.requests.ListAll(context.Background(), admin, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, models.StatusInProgress, page.Items[0].Status, "newest first")

	page, err = f.requests.ListAll(context.Background(), admin, "new", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].Title)

	counts, err := f.requests.Summary(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.StatusNew])
	assert.Equal(t, 1, counts[models.StatusInProgress])
	assert.Equal(t, 0, counts[models.StatusDone])

	_, err = f.requests.Summary(context.Background(), bob)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListAllPageSize(t *testing.T) {
	f := newFixture(t)
	for range defaultPageSize + 5 {
		f.create(t, alice, "room", "")
	}
	ctx := context.Background()

	page, err := f.requests.ListAll(ctx, admin, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, defaultPageSize)

	// above the maximum the page is capped, not reset to the default
	page, err = f.requests.ListAll(ctx, admin, "", maxPageSize+100, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, defaultPageSize+5)
	assert.Equal(t, defaultPageSize+5, page.Total)
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	f.create(t, alice, "fresh", "")
	f.at(t, models.StatusInProgress)
	older := f.at(t, models.StatusDone)
	newer := f.at(t, models.StatusDone)

	view, err := f.requests.Home(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.InProgress)
	require.Len(t, view.Done, 2)
	assert.Equal(t, newer.ID, view.Done[0].ID)
	assert.Equal(t, older.ID, view.Done[1].ID)
	assert.NotEmpty(t, view.Done[0].DesignImageURL)

	view, err = f.requests.Home(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, view.Done, 1)
}
