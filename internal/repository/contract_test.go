package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises behaviour every repository backend must share.
// Each subtest creates its own users so it can run against a shared database.
func runContract(t *testing.T, repos *repository.Repositories) {
	t.Run("InsertAndGet", func(t *testing.T) { testInsertAndGet(t, repos) })
	t.Run("InsertUnknownSubmitter", func(t *testing.T) { testInsertUnknownSubmitter(t, repos) })
	t.Run("View", func(t *testing.T) { testView(t, repos) })
	t.Run("Transition", func(t *testing.T) { testTransition(t, repos) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, repos) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, repos) })
	t.Run("GuardedUpdate", func(t *testing.T) { testGuardedUpdate(t, repos) })
	t.Run("ConcurrentTransitions", func(t *testing.T) { testConcurrentTransitions(t, repos) })
	t.Run("Images", func(t *testing.T) { testImages(t, repos) })
	t.Run("Flags", func(t *testing.T) { testFlags(t, repos) })
	t.Run("DeleteKeepsLog", func(t *testing.T) { testDeleteKeepsLog(t, repos) })
	t.Run("Users", func(t *testing.T) { testUsers(t, repos) })
	t.Run("Taxonomies", func(t *testing.T) { testTaxonomies(t, repos) })
}

var userSeq int

func createUser(t *testing.T, repos *repository.Repositories, role models.Role) *models.User {
	t.Helper()
	userSeq++
	name := fmt.Sprintf("%s-%d-%d", role, time.Now().UnixNano(), userSeq)
	u := &models.User{
		Username:  name,
		Email:     name + "@example.com",
		FullName:  name,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repos.User.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func insertArtwork(t *testing.T, repos *repository.Repositories, submitter int64, title string, at time.Time) *models.Artwork {
	t.Helper()
	lat, lon := -12.5, 131.25
	artist := "Unknown Artist"
	art := &models.Artwork{
		Title:             title,
		Description:       "Ochre figures on a sandstone overhang",
		ArtistName:        &artist,
		CreationTechnique: "ochre",
		ArtType:           &models.TaxonomyRef{Code: "rock-art", Name: "Rock Art"},
		Region:            &models.TaxonomyRef{Code: "australia", Name: "Australia"},
		Location: models.Location{
			Latitude:  &lat,
			Longitude: &lon,
			Name:      "Arnhem Land",
			Country:   "Australia",
		},
		SubmittedBy: submitter,
		SubmittedAt: at.UTC().Truncate(time.Microsecond),
		Status:      models.StatusPending,
	}
	entry := &models.ModerationLogEntry{
		Action:      models.ActionSubmitted,
		PerformedBy: submitter,
		Notes:       models.InitialSubmissionNote,
		NewStatus:   models.StatusPending,
		CreatedAt:   art.SubmittedAt,
	}
	require.NoError(t, repos.Artwork.Insert(context.Background(), art, entry))
	require.NotZero(t, art.ID)
	require.Equal(t, art.ID, entry.ArtworkID)
	return art
}

func approve(t *testing.T, repos *repository.Repositories, id, admin int64) *models.Artwork {
	t.Helper()
	art, err := repos.Artwork.Transition(context.Background(), models.Transition{
		ArtworkID:   id,
		From:        models.StatusPending,
		To:          models.StatusApproved,
		Action:      models.ActionApproved,
		PerformedBy: admin,
		At:          time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	return art
}

func testInsertAndGet(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	inserted := insertArtwork(t, repos, user.ID, "Wandjina Gallery", time.Now())

	got, err := repos.Artwork.GetByID(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wandjina Gallery", got.Title)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, user.Username, got.SubmitterUsername)
	require.NotNil(t, got.ArtType)
	assert.Equal(t, "Rock Art", got.ArtType.Name)
	assert.Nil(t, got.Period)
	require.True(t, got.Location.HasCoordinates())
	assert.InDelta(t, -12.5, *got.Location.Latitude, 1e-9)
	assert.Zero(t, got.ViewCount)
	assert.Nil(t, got.ApprovedAt)

	history, err := repos.ModerationLog.ListByArtwork(ctx, inserted.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ActionSubmitted, history[0].Action)
	assert.Equal(t, models.InitialSubmissionNote, history[0].Notes)
	assert.Equal(t, models.StatusPending, history[0].NewStatus)

	_, err = repos.Artwork.GetByID(ctx, inserted.ID+100000)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testInsertUnknownSubmitter(t *testing.T, repos *repository.Repositories) {
	art := &models.Artwork{
		Title:       "Orphan",
		Description: "No such submitter",
		SubmittedBy: 987654321,
		SubmittedAt: time.Now().UTC(),
		Status:      models.StatusPending,
	}
	entry := &models.ModerationLogEntry{Action: models.ActionSubmitted, PerformedBy: 987654321, NewStatus: models.StatusPending}
	err := repos.Artwork.Insert(context.Background(), art, entry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Zero(t, art.ID)
}

func testView(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	art := insertArtwork(t, repos, user.ID, "Viewed", time.Now())

	for i := 1; i <= 3; i++ {
		got, err := repos.Artwork.View(ctx, art.ID)
		require.NoError(t, err)
		assert.EqualValues(t, i, got.ViewCount)
	}

	got, err := repos.Artwork.GetByID(ctx, art.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ViewCount)

	_, err = repos.Artwork.View(ctx, art.ID+100000)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testTransition(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)

	approvedArt := insertArtwork(t, repos, user.ID, "To approve", time.Now())
	got := approve(t, repos, approvedArt.ID, admin.ID)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.NotNil(t, got.ApprovedAt)
	assert.Nil(t, got.RejectedAt)

	_, err := repos.Artwork.Transition(ctx, models.Transition{
		ArtworkID: approvedArt.ID, From: models.StatusPending, To: models.StatusRejected,
		Action: models.ActionRejected, PerformedBy: admin.ID, Notes: "late", At: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	rejectedArt := insertArtwork(t, repos, user.ID, "To reject", time.Now())
	got, err = repos.Artwork.Transition(ctx, models.Transition{
		ArtworkID: rejectedArt.ID, From: models.StatusPending, To: models.StatusRejected,
		Action: models.ActionRejected, PerformedBy: admin.ID, Notes: "duplicate entry", At: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "duplicate entry", *got.RejectionReason)

	history, err := repos.ModerationLog.ListByArtwork(ctx, rejectedArt.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionRejected, history[1].Action)
	assert.Equal(t, admin.ID, history[1].PerformedBy)
	assert.Equal(t, admin.Username, history[1].PerformedByUsername)

	recent, err := repos.ModerationLog.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, rejectedArt.ID, recent[0].ArtworkID)

	_, err = repos.Artwork.Transition(ctx, models.Transition{
		ArtworkID: rejectedArt.ID, From: models.StatusApproved, To: models.StatusRejected,
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func testListFilters(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)
	base := time.Now().Add(-time.Hour)

	first := insertArtwork(t, repos, user.ID, "Beta Shelter", base)
	second := insertArtwork(t, repos, user.ID, "alpha 100% Ochre", base.Add(time.Minute))
	third := insertArtwork(t, repos, user.ID, "Gamma Panel", base.Add(2*time.Minute))
	approve(t, repos, first.ID, admin.ID)
	approve(t, repos, second.ID, admin.ID)

	approved := models.StatusApproved
	ids := func(arts []*models.Artwork) []int64 {
		out := make([]int64, 0, len(arts))
		for _, a := range arts {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.ArtworkFilter
		want   []int64
	}{
		{"all newest first", models.ArtworkFilter{}, []int64{third.ID, second.ID, first.ID}},
		{"oldest first", models.ArtworkFilter{Sort: models.SortDateAsc}, []int64{first.ID, second.ID, third.ID}},
		{"title ascending ignores case", models.ArtworkFilter{Sort: models.SortTitleAsc}, []int64{second.ID, first.ID, third.ID}},
		{"title descending", models.ArtworkFilter{Sort: models.SortTitleDesc}, []int64{third.ID, first.ID, second.ID}},
		{"approved only", models.ArtworkFilter{Status: &approved}, []int64{second.ID, first.ID}},
		{"search is case insensitive", models.ArtworkFilter{Search: "SHELTER"}, []int64{first.ID}},
		{"search escapes percent", models.ArtworkFilter{Search: "100%"}, []int64{second.ID}},
		{"search matches artist", models.ArtworkFilter{Search: "unknown artist"}, []int64{third.ID, second.ID, first.ID}},
		{"conjunctive", models.ArtworkFilter{Status: &approved, Search: "beta", Region: "australia"}, []int64{first.ID}},
		{"unmatched taxonomy", models.ArtworkFilter{ArtType: "pottery"}, []int64{}},
		{"unmatched period", models.ArtworkFilter{Period: "modern"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			filter.SubmittedBy = &user.ID
			got, err := repos.Artwork.List(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func testUpdate(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	art := insertArtwork(t, repos, user.ID, "Before", time.Now())

	title := "After"
	empty := ""
	period := "ancient"
	sensitive := true
	at := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	got, err := repos.Artwork.Update(ctx, art.ID, models.ArtworkUpdate{
		Title:      &title,
		ArtistName: &empty,
		Period:     &period,
		Sensitive:  &sensitive,
	}, nil, at)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Nil(t, got.ArtistName)
	require.NotNil(t, got.Period)
	assert.Equal(t, "Ancient", got.Period.Name)
	assert.True(t, got.Location.Sensitive)
	assert.Equal(t, "Ochre figures on a sandstone overhang", got.Description)
	assert.WithinDuration(t, at, got.UpdatedAt, time.Millisecond)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = repos.Artwork.Update(ctx, art.ID+100000, models.ArtworkUpdate{Title: &title}, nil, at)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testGuardedUpdate(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)
	art := insertArtwork(t, repos, user.ID, "Guarded", time.Now())
	pending := models.StatusPending
	at := time.Now().UTC().Truncate(time.Microsecond)

	title := "Edited while pending"
	got, err := repos.Artwork.Update(ctx, art.ID, models.ArtworkUpdate{Title: &title}, &pending, at)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)

	approve(t, repos, art.ID, admin.ID)

	late := "Edited after approval"
	_, err = repos.Artwork.Update(ctx, art.ID, models.ArtworkUpdate{Title: &late}, &pending, at)
	assert.ErrorIs(t, err, models.ErrForbidden)

	stored, err := repos.Artwork.GetByID(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, title, stored.Title)
	assert.Equal(t, models.StatusApproved, stored.Status)

	_, err = repos.Artwork.Update(ctx, art.ID+100000, models.ArtworkUpdate{Title: &late}, &pending, at)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testConcurrentTransitions(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)
	art := insertArtwork(t, repos, user.ID, "Contested", time.Now())

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr := models.Transition{
				ArtworkID:   art.ID,
				From:        models.StatusPending,
				To:          models.StatusApproved,
				Action:      models.ActionApproved,
				PerformedBy: admin.ID,
				At:          time.Now().UTC(),
			}
			if i%2 == 1 {
				tr.To, tr.Action, tr.Notes = models.StatusRejected, models.ActionRejected, "duplicate"
			}
			_, err := repos.Artwork.Transition(ctx, tr)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes, invalid := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, models.ErrInvalidTransition):
			invalid++
		default:
			t.Errorf("unexpected transition error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, invalid)

	history, err := repos.ModerationLog.ListByArtwork(ctx, art.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	stored, err := repos.Artwork.GetByID(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, history[1].NewStatus, stored.Status)
}

func testImages(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	art := insertArtwork(t, repos, user.ID, "Pictured", time.Now())

	images, err := repos.Artwork.Images(ctx, art.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := &models.ArtworkImage{ArtworkID: art.ID, ImagePath: "uploads/a.jpg", IsPrimary: true, UploadedAt: now}
	second := &models.ArtworkImage{ArtworkID: art.ID, ImagePath: "uploads/b.jpg", UploadedAt: now}
	third := &models.ArtworkImage{ArtworkID: art.ID, ImagePath: "uploads/c.jpg", IsPrimary: true, UploadedAt: now}
	for _, img := range []*models.ArtworkImage{first, second, third} {
		require.NoError(t, repos.Artwork.AddImage(ctx, img))
	}
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.Equal(t, 2, third.DisplayOrder)

	images, err = repos.Artwork.Images(ctx, art.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "uploads/c.jpg", images[0].ImagePath)
	assert.True(t, images[0].IsPrimary)
	assert.Equal(t, "uploads/a.jpg", images[1].ImagePath)
	assert.False(t, images[1].IsPrimary)

	got, err := repos.Artwork.GetByID(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/c.jpg", got.PrimaryImage)

	err = repos.Artwork.AddImage(ctx, &models.ArtworkImage{ArtworkID: art.ID + 100000, ImagePath: "x.jpg", UploadedAt: now})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testFlags(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)
	art := insertArtwork(t, repos, user.ID, "Flagged", time.Now())

	openBefore, err := repos.Flag.CountOpen(ctx)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	named := &models.Flag{ArtworkID: art.ID, ReporterID: &user.ID, Reason: models.ReasonInaccurate, Status: models.FlagStatusOpen, CreatedAt: now}
	anonymous := &models.Flag{ArtworkID: art.ID, Reason: models.ReasonOther, Details: "wrong region", Status: models.FlagStatusOpen, CreatedAt: now.Add(time.Second)}
	require.NoError(t, repos.Flag.Create(ctx, named))
	require.NoError(t, repos.Flag.Create(ctx, anonymous))

	got, err := repos.Flag.GetByID(ctx, anonymous.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousDisplayName, got.ReporterName)
	assert.Equal(t, "Flagged", got.ArtworkTitle)
	assert.Nil(t, got.ReporterID)

	got, err = repos.Flag.GetByID(ctx, named.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.ReporterName)

	openAfter, err := repos.Flag.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, openBefore+2, openAfter)

	resolvedAt := now.Add(time.Minute)
	resolved, err := repos.Flag.Resolve(ctx, named.ID, admin.ID, resolvedAt)
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)

	again, err := repos.Flag.Resolve(ctx, named.ID, user.ID, resolvedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *again.ResolvedBy)
	assert.WithinDuration(t, resolvedAt, *again.ResolvedAt, time.Millisecond)

	status := models.FlagStatusResolved
	resolvedList, err := repos.Flag.List(ctx, &status)
	require.NoError(t, err)
	found := false
	for _, f := range resolvedList {
		assert.Equal(t, models.FlagStatusResolved, f.Status)
		if f.ID == named.ID {
			found = true
		}
	}
	assert.True(t, found)

	deleted, err := repos.Flag.Delete(ctx, anonymous.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repos.Flag.Delete(ctx, anonymous.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	err = repos.Flag.Create(ctx, &models.Flag{ArtworkID: art.ID + 100000, Reason: models.ReasonOther, Status: models.FlagStatusOpen, CreatedAt: now})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testDeleteKeepsLog(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	user := createUser(t, repos, models.RoleContributor)
	admin := createUser(t, repos, models.RoleAdmin)
	art := insertArtwork(t, repos, user.ID, "Removed", time.Now())
	approve(t, repos, art.ID, admin.ID)

	flag := &models.Flag{ArtworkID: art.ID, Reason: models.ReasonInappropriate, Status: models.FlagStatusOpen, CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Flag.Create(ctx, flag))

	deleted, err := repos.Artwork.Delete(ctx, art.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repos.Artwork.GetByID(ctx, art.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repos.Flag.GetByID(ctx, flag.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	history, err := repos.ModerationLog.ListByArtwork(ctx, art.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].ArtworkTitle)

	deleted, err = repos.Artwork.Delete(ctx, art.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testUsers(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	totalBefore, activeBefore, err := repos.User.Count(ctx)
	require.NoError(t, err)

	user := createUser(t, repos, models.RoleVisitor)
	got, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, models.RoleVisitor, got.Role)
	assert.True(t, got.Active)

	dup := *user
	dup.ID = 0
	assert.Error(t, repos.User.Create(ctx, &dup))

	updated, err := repos.User.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	total, active, err := repos.User.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, totalBefore+1, total)
	assert.Equal(t, activeBefore, active)

	users, err := repos.User.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, total)

	_, err = repos.User.SetActive(ctx, user.ID+100000, true)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repos.User.GetByID(ctx, user.ID+100000)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testTaxonomies(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	for kind, want := range map[models.TaxonomyKind]int{
		models.TaxonomyArtTypes: 10,
		models.TaxonomyPeriods:  4,
		models.TaxonomyRegions:  6,
	} {
		entries, err := repos.Taxonomy.List(ctx, kind)
		require.NoError(t, err)
		assert.Len(t, entries, want, string(kind))
		for i := 1; i < len(entries); i++ {
			assert.LessOrEqual(t, entries[i-1].Name, entries[i].Name)
		}
	}
}
