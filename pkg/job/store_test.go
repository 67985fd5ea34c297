package job_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/seed"
)

var fixedNow = time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T, mirror kv.Store) *job.Store {
	t.Helper()
	d, err := seed.Load()
	require.NoError(t, err)
	s, err := job.NewStore(context.Background(), mirror, d.Jobs, job.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func ids(jobs []job.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

type failingKV struct{ kv.Store }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestAddJobAppendsActive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())
	before := len(s.ActiveJobs())

	j, err := s.AddJob(ctx, job.Fields{
		Title:       "X",
		Company:     "Y",
		Budget:      "0.2 ETH",
		Skills:      []string{" Go ", "", "Solidity"},
		RecruiterID: "recruiter9",
	})
	require.NoError(t, err)

	assert.Equal(t, job.StatusActive, j.Status)
	assert.Equal(t, "Mar 7, 2024", j.Date)
	assert.Equal(t, []string{"Go", "Solidity"}, j.Skills)
	assert.Equal(t, "job1709805600000", j.ID)

	active := s.ActiveJobs()
	require.Len(t, active, before+1)
	assert.Equal(t, j, active[len(active)-1])
}

func TestAddJobIDsUnique(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		j, err := s.AddJob(ctx, job.Fields{Title: "t", RecruiterID: "r"})
		require.NoError(t, err)
		assert.False(t, seen[j.ID], "duplicate id %s", j.ID)
		seen[j.ID] = true
	}
	assert.Len(t, s.Jobs(), 53)
}

func TestActiveJobsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	extra, err := s.AddJob(ctx, job.Fields{Title: "later", RecruiterID: "recruiter1"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateJobStatus(ctx, "job2", job.StatusClosed))

	assert.Equal(t, []string{"job1", "job3", extra.ID}, ids(s.ActiveJobs()))
	assert.Equal(t, []string{"job1", "job2", "job3", extra.ID}, ids(s.Jobs()))
}

func TestUpdateJobStatusReflectedInRecruiterJobs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	require.NoError(t, s.UpdateJobStatus(ctx, "job3", job.StatusDraft))

	mine := s.RecruiterJobs("recruiter1")
	require.Equal(t, []string{"job1", "job3"}, ids(mine))
	assert.Equal(t, job.StatusActive, mine[0].Status)
	assert.Equal(t, job.StatusDraft, mine[1].Status)

	other, ok := s.Get("job2")
	require.True(t, ok)
	assert.Equal(t, job.StatusActive, other.Status)
}

func TestUpdateJobStatusUnknownIDIsNoop(t *testing.T) {
	mirror := kv.NewMemory()
	s := newStore(t, mirror)

	require.NoError(t, s.UpdateJobStatus(context.Background(), "nope", job.StatusClosed))

	_, err := mirror.Get(context.Background(), kv.KeyJobs)
	assert.ErrorIs(t, err, kv.ErrNotFound, "nothing persisted for a no-op")
	assert.Len(t, s.ActiveJobs(), 3)
}

func TestUpdateJobStatusRejectsUnknownStatus(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	err := s.UpdateJobStatus(context.Background(), "job1", job.Status("archived"))
	assert.ErrorIs(t, err, job.ErrInvalidStatus)
}

func TestMutationsSurviveReload(t *testing.T) {
	ctx := context.Background()
	mirror := kv.NewMemory()
	s := newStore(t, mirror)

	added, err := s.AddJob(ctx, job.Fields{Title: "Indexer Engineer", RecruiterID: "recruiter2"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateJobStatus(ctx, "job1", job.StatusClosed))

	raw, err := mirror.Get(ctx, kv.KeyJobs)
	require.NoError(t, err)
	var doc struct {
		State struct {
			Jobs []job.Job `json:"jobs"`
		} `json:"state"`
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc.State.Jobs, 4)

	reloaded, err := job.NewStore(ctx, mirror, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Jobs(), reloaded.Jobs())
	got, ok := reloaded.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Indexer Engineer", got.Title)
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, failingKV{kv.NewMemory()})

	_, err := s.AddJob(ctx, job.Fields{Title: "t"})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, s.Jobs(), 3)

	err = s.UpdateJobStatus(ctx, "job1", job.StatusClosed)
	assert.Error(t, err)
	got, _ := s.Get("job1")
	assert.Equal(t, job.StatusActive, got.Status)
}

func TestUnreadableMirrorFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	mirror := kv.NewMemory()
	require.NoError(t, mirror.Set(ctx, kv.KeyJobs, []byte("{broken")))

	s := newStore(t, mirror)
	assert.Equal(t, []string{"job1", "job2", "job3"}, ids(s.Jobs()))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	jobs := s.ActiveJobs()
	jobs[0].Skills[0] = "Rust"
	jobs[0].Status = job.StatusClosed

	again, _ := s.Get("job1")
	assert.Equal(t, "Solidity", again.Skills[0])
	assert.Equal(t, job.StatusActive, again.Status)
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"Solidity", "ERC-20", "DeFi"}, job.SplitSkills("Solidity, ERC-20 ,DeFi,"))
	assert.Empty(t, job.SplitSkills(""))
}
