package governance

import (
	"math"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
)

// Choice is a ballot option.
type Choice string

const (
	Yes Choice = "yes"
	No  Choice = "no"
)

func (c Choice) Valid() bool { return c == Yes || c == No }

var ErrInvalidChoice = apperr.New(apperr.CodeValidation, "vote must be yes or no")

// Tally counts votes; Total is the number of voters. Seeded tallies carry
// votes that have no Ballot.
type Tally struct {
	Yes   int `json:"yes" yaml:"yes"`
	No    int `json:"no" yaml:"no"`
	Total int `json:"total" yaml:"total"`
}

// YesPercent is the rounded share of yes votes; 0 without votes.
func (t Tally) YesPercent() int {
	if t.Total == 0 {
		return 0
	}
	return int(math.Round(float64(t.Yes) / float64(t.Total) * 100))
}

// Ballot is one member's current vote on a proposal.
type Ballot struct {
	Voter  identity.Member `json:"voter" yaml:"voter"`
	Choice Choice          `json:"choice" yaml:"choice"`
	Date   string          `json:"date" yaml:"date"`
}

// Proposal is a governance question put to a vote. Deadline is a display
// string and is not enforced.
type Proposal struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Creator     identity.Member `json:"creator" yaml:"creator"`
	Votes       Tally           `json:"votes" yaml:"votes"`
	Ballots     []Ballot        `json:"ballots" yaml:"ballots"`
	Deadline    string          `json:"deadline" yaml:"deadline"`
	Created     string          `json:"created" yaml:"created"`
}

// VoteOf returns memberID's current choice.
func (p Proposal) VoteOf(memberID string) (Choice, bool) {
	for _, b := range p.Ballots {
		if b.Voter.ID == memberID {
			return b.Choice, true
		}
	}
	return "", false
}

func (p Proposal) clone() Proposal {
	p.Ballots = append(make([]Ballot, 0, len(p.Ballots)), p.Ballots...)
	return p
}

type Fields struct {
	Title       string
	Description string
	Deadline    string
	Creator     identity.Member
}

// CastVote is one entry of a member's voting history.
type CastVote struct {
	ProposalID string          `json:"proposalId"`
	Title      string          `json:"title"`
	Creator    identity.Member `json:"creator"`
	Choice     Choice          `json:"vote"`
	Date       string          `json:"date"`
}
