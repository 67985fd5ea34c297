package governance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/seed"
)

var (
	fixedNow = time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	alex     = identity.Member{ID: "user123", Name: "Alex Johnson", Username: "alexj"}
	dana     = identity.Member{ID: "user200", Name: "Dana Reyes", Username: "dana"}
)

func newStore(t *testing.T, mirror kv.Store) *governance.Store {
	t.Helper()
	d, err := seed.Load()
	require.NoError(t, err)
	s, err := governance.NewStore(context.Background(), mirror, d.Proposals,
		governance.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

type failingKV struct{ kv.Store }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func tally(t *testing.T, s *governance.Store, id string) governance.Tally {
	t.Helper()
	p, ok := s.Get(id)
	require.True(t, ok)
	return p.Votes
}

func TestCreateProposal(t *testing.T) {
	s := newStore(t, kv.NewMemory())

	p, err := s.Create(context.Background(), governance.Fields{Title: "Fund audits", Description: "d", Deadline: "2024-04-01", Creator: dana})
	require.NoError(t, err)
	assert.Equal(t, governance.Tally{}, p.Votes)
	assert.Empty(t, p.Ballots)
	assert.Equal(t, "Mar 7, 2024", p.Created)
	assert.Len(t, s.Proposals(), 4)
}

func TestVoteTally(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	require.NoError(t, s.Vote(ctx, "prop1", dana, governance.No))
	assert.Equal(t, governance.Tally{Yes: 78, No: 23, Total: 101}, tally(t, s, "prop1"))

	require.NoError(t, s.Vote(ctx, "prop1", dana, governance.No))
	assert.Equal(t, governance.Tally{Yes: 78, No: 23, Total: 101}, tally(t, s, "prop1"), "same choice twice counts once")

	require.NoError(t, s.Vote(ctx, "prop1", dana, governance.Yes))
	assert.Equal(t, governance.Tally{Yes: 79, No: 22, Total: 101}, tally(t, s, "prop1"), "changed vote moves")

	p, _ := s.Get("prop1")
	choice, ok := p.VoteOf("user200")
	assert.True(t, ok)
	assert.Equal(t, governance.Yes, choice)
	assert.Len(t, p.Ballots, 2)
}

func TestVoteChangesSeededBallot(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kv.NewMemory())

	require.NoError(t, s.Vote(ctx, "prop2", alex, governance.Yes))
	assert.Equal(t, governance.Tally{Yes: 66, No: 34, Total: 100}, tally(t, s, "prop2"))

	votes := s.VotesBy("user123")
	require.Len(t, votes, 3)
	assert.Equal(t, governance.CastVote{
		ProposalID: "prop2",
		Title:      "Increase verification rewards by 20%",
		Creator:    identity.Member{ID: "user125", Name: "Michael Chen", Username: "mikec", Avatar: "/placeholder.svg?height=32&width=32"},
		Choice:     governance.Yes,
		Date:       "Mar 7, 2024",
	}, votes[1])
}

func TestVoteRejectsUnknownChoice(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	err := s.Vote(context.Background(), "prop1", dana, governance.Choice("abstain"))
	assert.ErrorIs(t, err, governance.ErrInvalidChoice)
	assert.Equal(t, 100, tally(t, s, "prop1").Total)
}

func TestVoteUnknownProposalIsNoop(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	require.NoError(t, s.Vote(context.Background(), "prop9", dana, governance.Yes))
	assert.Empty(t, s.VotesBy("user200"))
}

func TestProposalsSurviveReload(t *testing.T) {
	ctx := context.Background()
	mirror := kv.NewMemory()
	s := newStore(t, mirror)

	_, err := s.Create(ctx, governance.Fields{Title: "t", Description: "d", Creator: dana})
	require.NoError(t, err)
	require.NoError(t, s.Vote(ctx, "prop3", dana, governance.No))

	reloaded, err := governance.NewStore(ctx, mirror, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Proposals(), reloaded.Proposals())
}

func TestVotePersistFailureLeavesTally(t *testing.T) {
	s := newStore(t, failingKV{kv.NewMemory()})
	assert.ErrorContains(t, s.Vote(context.Background(), "prop1", dana, governance.Yes), "disk full")
	assert.Equal(t, governance.Tally{Yes: 78, No: 22, Total: 100}, tally(t, s, "prop1"))
}

func TestYesPercent(t *testing.T) {
	assert.Equal(t, 0, governance.Tally{}.YesPercent())
	assert.Equal(t, 78, governance.Tally{Yes: 78, No: 22, Total: 100}.YesPercent())
	assert.Equal(t, 67, governance.Tally{Yes: 2, No: 1, Total: 3}.YesPercent())
}
