package services

import (
	"context"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

type historyFixture struct {
	*catalogFixture
	history *HistoryService
	owner   *models.Account
	profile *models.Profile
	movies  []MovieView
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()
	f := newCatalogFixture(t)
	ctx := context.Background()

	owner := f.createAccount(t, "viewer@example.com")
	profile, err := f.profiles.Create(ctx, owner.ID, ProfileInput{Name: strPtr("Main")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	movies, err := f.catalog.ListMovies(ctx, owner.ID, "", nil)
	if err != nil || len(movies) < 3 {
		t.Fatalf("expected a seeded catalog, got %d movies (%v)", len(movies), err)
	}

	history := NewHistoryService(f.db, f.profiles)
	history.now = fixedClock(f.now)
	return &historyFixture{catalogFixture: f, history: history, owner: owner, profile: profile, movies: movies}
}

func (f *historyFixture) watchAt(t *testing.T, at time.Time, movieID uint, input HistoryInput) *models.WatchHistory {
	t.Helper()
	f.history.now = fixedClock(at)
	entry, err := f.history.Record(context.Background(), f.owner.ID, f.profile.ID, movieID, input)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	return entry
}

func TestRecordHistoryCreatesThenUpdatesOneEntry(t *testing.T) {
	f := newHistoryFixture(t)
	movieID := f.movies[0].ID

	first := f.watchAt(t, f.now, movieID, HistoryInput{})
	if first.DurationWatched != 1 || first.ResumePosition != models.DefaultResumePosition || first.Completed {
		t.Fatalf("expected defaults on first watch, got %+v", first)
	}
	if first.Movie == nil || first.Movie.ID != movieID {
		t.Fatalf("expected movie to be preloaded")
	}

	later := f.now.Add(time.Hour)
	second := f.watchAt(t, later, movieID, HistoryInput{DurationWatched: intPtr(42), ResumePosition: strPtr("00:42:10")})
	if second.ID != first.ID {
		t.Fatalf("expected the same entry to be updated, got %d and %d", first.ID, second.ID)
	}
	if second.DurationWatched != 42 || second.ResumePosition != "00:42:10" {
		t.Fatalf("expected progress to be stored, got %+v", second)
	}
	if !second.StartedAt.Equal(f.now) || !second.LastWatchedAt.Equal(later) {
		t.Fatalf("expected started %v and last watched %v, got %v and %v", f.now, later, second.StartedAt, second.LastWatchedAt)
	}

	entries, err := f.history.List(context.Background(), f.owner.ID, f.profile.ID, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry per movie, got %d", len(entries))
	}
}

func TestContinueWatchingSkipsCompleted(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()

	f.watchAt(t, f.now, f.movies[0].ID, HistoryInput{})
	f.watchAt(t, f.now.Add(time.Minute), f.movies[1].ID, HistoryInput{Completed: boolPtr(true)})
	f.watchAt(t, f.now.Add(2*time.Minute), f.movies[2].ID, HistoryInput{})

	unfinished, err := f.history.ContinueWatching(ctx, f.owner.ID, f.profile.ID, 0)
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(unfinished) != 2 || unfinished[0].MovieID != f.movies[2].ID || unfinished[1].MovieID != f.movies[0].ID {
		t.Fatalf("expected unfinished entries newest first, got %+v", unfinished)
	}

	limited, err := f.history.ContinueWatching(ctx, f.owner.ID, f.profile.ID, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d (%v)", len(limited), err)
	}

	all, err := f.history.List(ctx, f.owner.ID, f.profile.ID, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].MovieID != f.movies[2].ID || all[1].MovieID != f.movies[1].ID {
		t.Fatalf("expected the two latest entries, got %+v", all)
	}
}

func TestHistoryRequiresOwnedProfile(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()
	stranger := f.createAccount(t, "peeker@example.com")

	_, err := f.history.List(ctx, stranger.ID, f.profile.ID, 0)
	assertKind(t, err, ErrForbidden)
	_, err = f.history.Record(ctx, stranger.ID, f.profile.ID, f.movies[0].ID, HistoryInput{})
	assertKind(t, err, ErrForbidden)
	err = f.history.Clear(ctx, stranger.ID, f.profile.ID)
	assertKind(t, err, ErrForbidden)

	_, err = f.history.ContinueWatching(ctx, f.owner.ID, 9999, 0)
	assertKind(t, err, ErrNotFound)
}

func TestRecordHistoryValidation(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()

	_, err := f.history.Record(ctx, f.owner.ID, f.profile.ID, f.movies[0].ID, HistoryInput{DurationWatched: intPtr(-1)})
	assertKind(t, err, ErrValidation)
	_, err = f.history.Record(ctx, f.owner.ID, f.profile.ID, f.movies[0].ID, HistoryInput{ResumePosition: strPtr("1:5")})
	assertKind(t, err, ErrValidation)
	_, err = f.history.Record(ctx, f.owner.ID, f.profile.ID, 9999, HistoryInput{})
	assertKind(t, err, ErrNotFound)
}

func TestUpdateRemoveAndClearHistory(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()

	entry := f.watchAt(t, f.now, f.movies[0].ID, HistoryInput{})
	f.watchAt(t, f.now, f.movies[1].ID, HistoryInput{})

	f.history.now = fixedClock(f.now.Add(time.Hour))
	updated, err := f.history.Update(ctx, f.owner.ID, f.profile.ID, entry.ID, HistoryInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Completed || updated.DurationWatched != 1 {
		t.Fatalf("expected only completed to change, got %+v", updated)
	}
	_, err = f.history.Update(ctx, f.owner.ID, f.profile.ID, 9999, HistoryInput{})
	assertKind(t, err, ErrNotFound)

	if err := f.history.Remove(ctx, f.owner.ID, f.profile.ID, entry.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	err = f.history.Remove(ctx, f.owner.ID, f.profile.ID, entry.ID)
	assertKind(t, err, ErrNotFound)

	if err := f.history.Clear(ctx, f.owner.ID, f.profile.ID); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, err := f.history.List(ctx, f.owner.ID, f.profile.ID, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty history, got %d (%v)", len(entries), err)
	}
}

func TestDeleteProfileDropsHistory(t *testing.T) {
	f := newHistoryFixture(t)
	f.watchAt(t, f.now, f.movies[0].ID, HistoryInput{})

	if err := f.profiles.Delete(context.Background(), f.owner.ID, f.profile.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	entries, err := database.ListHistory(f.db, f.profile.ID, false, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected history to be removed with the profile, got %d (%v)", len(entries), err)
	}
}
