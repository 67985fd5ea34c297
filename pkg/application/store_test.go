package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
	"github.com/mk-2871/Proof-of-Talent/pkg/seed"
)

func newStore(t *testing.T, mirror kv.Store) *application.Store {
	t.Helper()
	d, err := seed.Load()
	require.NoError(t, err)
	now := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	s, err := application.NewStore(context.Background(), mirror, d.Applications,
		application.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return s
}

func candidate(id string) application.Candidate {
	return application.Candidate{ID: id, Name: "Alex Johnson", Email: "alex@example.com", Skills: []string{"Go"}}
}

func statusOf(t *testing.T, s *application.Store, id string) application.Status {
	t.Helper()
	a, ok := s.Get(id)
	require.True(t, ok, "application %s missing", id)
	return a.Status
}

func TestAddApplicationThenShortlist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	a, err := s.AddApplication(ctx, application.Fields{
		JobID:       "job1",
		Job:         application.JobSnapshot{Title: "Smart Contract Developer", Company: "DeFi Protocol", Location: "Remote"},
		Candidate:   candidate("user200"),
		Application: "hire me",
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, a.Status)
	assert.Equal(t, "May 1, 2024", a.Date)
	assert.NotEmpty(t, a.ID)

	require.NoError(t, s.ShortlistCandidate(ctx, a.ID))

	shortlisted := s.ShortlistedApplications()
	require.Len(t, shortlisted, 1)
	assert.Equal(t, a.ID, shortlisted[0].ID)

	byJob := s.ApplicationsByJob("job1")
	require.Len(t, byJob, 2)
	assert.Equal(t, "app1", byJob[0].ID)
	assert.Equal(t, a.ID, byJob[1].ID)
	assert.Equal(t, application.StatusShortlisted, byJob[1].Status)
}

func TestRemoveFromShortlistRestoresPending(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())
	count := len(s.Applications())

	require.NoError(t, s.ShortlistCandidate(ctx, "app2"))
	assert.Equal(t, application.StatusShortlisted, statusOf(t, s, "app2"))

	require.NoError(t, s.RemoveFromShortlist(ctx, "app2"))
	assert.Equal(t, application.StatusPending, statusOf(t, s, "app2"))
	assert.Len(t, s.Applications(), count)
	assert.Empty(t, s.ShortlistedApplications())
}

func TestRejectedStaysRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	require.NoError(t, s.RejectCandidate(ctx, "app3"))
	require.NoError(t, s.RemoveFromShortlist(ctx, "app3"))
	require.NoError(t, s.ShortlistCandidate(ctx, "app3"))
	require.NoError(t, s.RejectCandidate(ctx, "app3"))

	assert.Equal(t, application.StatusRejected, statusOf(t, s, "app3"))
}

func TestRejectFromShortlist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	require.NoError(t, s.ShortlistCandidate(ctx, "app1"))
	require.NoError(t, s.RejectCandidate(ctx, "app1"))
	assert.Equal(t, application.StatusRejected, statusOf(t, s, "app1"))
}

func TestStatusChangesOnUnknownIDAreNoops(t *testing.T) {
	ctx := context.Background()
	mirror := kv.NewMemory()
	s := newStore(t, mirror)

	assert.NoError(t, s.ShortlistCandidate(ctx, "missing"))
	assert.NoError(t, s.RejectCandidate(ctx, "missing"))
	assert.NoError(t, s.RemoveFromShortlist(ctx, "missing"))
	assert.NoError(t, s.UpdateResumeForApplication(ctx, "missing", &resume.Meta{Name: "cv.pdf"}))

	_, err := mirror.Get(ctx, kv.KeyApplications)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestUpdateResumeForCandidateFansOut(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	for _, jobID := range []string{"job2", "job3"} {
		_, err := s.AddApplication(ctx, application.Fields{JobID: jobID, Candidate: candidate("user123")})
		require.NoError(t, err)
	}

	meta := &resume.Meta{Name: "alex.pdf", Size: 2048, Type: resume.MimePDF, LastModified: 1700000000000}
	require.NoError(t, s.UpdateResumeForCandidate(ctx, "user123", meta))

	mine := s.ApplicationsByCandidate("user123")
	require.Len(t, mine, 3)
	for _, a := range mine {
		require.NotNil(t, a.Resume, a.ID)
		assert.Equal(t, *meta, *a.Resume)
	}
	for _, a := range s.Applications() {
		if a.Candidate.ID != "user123" {
			assert.Nil(t, a.Resume, a.ID)
		}
	}

	meta.Name = "mutated-after-call.pdf"
	assert.Equal(t, "alex.pdf", s.CandidateResume("user123").Name)
}

func TestUpdateResumeForApplicationTouchesOne(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())
	second, err := s.AddApplication(ctx, application.Fields{JobID: "job3", Candidate: candidate("user123")})
	require.NoError(t, err)

	require.NoError(t, s.UpdateResumeForApplication(ctx, second.ID, &resume.Meta{Name: "tailored.docx"}))

	first, _ := s.Get("app1")
	assert.Nil(t, first.Resume)
	got, _ := s.Get(second.ID)
	require.NotNil(t, got.Resume)
	assert.Equal(t, "tailored.docx", got.Resume.Name)

	assert.Nil(t, s.CandidateResume("user123"), "first matching application decides")
}

func TestCandidateResume(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	assert.Nil(t, s.CandidateResume("nobody"))
	require.NoError(t, s.UpdateResumeForApplication(ctx, "app2", &resume.Meta{Name: "emma.pdf"}))
	assert.Equal(t, "emma.pdf", s.CandidateResume("user124").Name)

	require.NoError(t, s.UpdateResumeForCandidate(ctx, "user124", nil))
	assert.Nil(t, s.CandidateResume("user124"))
}

func TestApplicationsSurviveReload(t *testing.T) {
	ctx := context.Background()
	mirror := kv.NewMemory()
	s := newStore(t, mirror)

	a, err := s.AddApplication(ctx, application.Fields{
		JobID:     "job1",
		Candidate: candidate("user300"),
		Resume:    &resume.Meta{Name: "cv.pdf", Size: 10},
	})
	require.NoError(t, err)
	require.NoError(t, s.ShortlistCandidate(ctx, a.ID))

	reloaded, err := application.NewStore(ctx, mirror, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Applications(), reloaded.Applications())
	assert.Equal(t, application.StatusShortlisted, statusOf(t, reloaded, a.ID))
}

func TestAddApplicationIDsUnique(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		a, err := s.AddApplication(ctx, application.Fields{JobID: "job1", Candidate: candidate("c")})
		require.NoError(t, err)
		assert.False(t, seen[a.ID])
		seen[a.ID] = true
	}
}
