package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	require.Len(t, d.Jobs, 3)
	assert.Equal(t, "job1", d.Jobs[0].ID)
	assert.Equal(t, job.StatusActive, d.Jobs[0].Status)
	assert.Equal(t, []string{"Solidity", "ERC-20", "DeFi"}, d.Jobs[0].Skills)
	assert.Equal(t, "Apr 15, 2023", d.Jobs[0].Date)
	assert.Equal(t, "recruiter1", d.Jobs[2].RecruiterID)

	require.Len(t, d.Applications, 3)
	for _, a := range d.Applications {
		assert.Equal(t, application.StatusPending, a.Status)
		assert.Nil(t, a.Resume)
	}
	assert.Equal(t, "user124", d.Applications[1].Candidate.ID)
	assert.Equal(t, "job2", d.Applications[1].JobID)
}

func TestLoadCommunity(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	alex := identity.Member{ID: "user123", Name: "Alex Johnson", Username: "alexj", Avatar: "/placeholder.svg?height=40&width=40"}

	require.Len(t, d.Skills, 9)
	assert.Equal(t, alex, d.Skills[0].Owner)
	assert.Equal(t, skill.StatusVerified, d.Skills[0].Status)
	assert.Equal(t, skill.StatusRejected, d.Skills[5].Status)
	assert.Equal(t, "sarahw", d.Skills[6].Owner.Username)
	assert.Equal(t, skill.StatusPending, d.Skills[8].Status)

	require.Len(t, d.Endorsements, 3)
	for _, e := range d.Endorsements {
		assert.Equal(t, alex, e.To)
	}

	require.Len(t, d.Proposals, 3)
	p := d.Proposals[1]
	assert.Equal(t, governance.Tally{Yes: 65, No: 35, Total: 100}, p.Votes)
	choice, ok := p.VoteOf("user123")
	assert.True(t, ok)
	assert.Equal(t, governance.No, choice)
	assert.Equal(t, "Apr 18, 2023", p.Created)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("jobs: {not: [a list"))
	assert.Error(t, err)
}
