// Package governance keeps DAO proposals and the ballots cast on them.
package governance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/idgen"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

const DateLayout = "Jan 2, 2006"

type persisted struct {
	State struct {
		Proposals []Proposal `json:"proposals"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store owns the ordered proposal collection. Every mutation is written
// through to the kv mirror before it returns.
type Store struct {
	mu        sync.RWMutex
	kv        kv.Store
	ids       *idgen.Generator
	now       func() time.Time
	proposals []Proposal
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(ctx context.Context, mirror kv.Store, seed []Proposal, opts ...Option) (*Store, error) {
	s := &Store{kv: mirror, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = idgen.New("prop", s.now)

	raw, err := mirror.Get(ctx, kv.KeyProposals)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.proposals = cloneAll(seed)
	case err != nil:
		return nil, fmt.Errorf("load proposals: %w", err)
	default:
		var doc persisted
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("level=warn msg=\"discarding unreadable proposal mirror\" err=%v", err)
			s.proposals = cloneAll(seed)
		} else {
			s.proposals = doc.State.Proposals
		}
	}
	return s, nil
}

// Create appends a proposal with an empty tally.
func (s *Store) Create(ctx context.Context, f Fields) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Proposal{
		ID:          s.ids.Next(s.exists),
		Title:       f.Title,
		Description: f.Description,
		Creator:     f.Creator,
		Ballots:     []Ballot{},
		Deadline:    f.Deadline,
		Created:     s.now().Format(DateLayout),
	}
	next := append(cloneAll(s.proposals), p)
	if err := s.persist(ctx, next); err != nil {
		return Proposal{}, err
	}
	s.proposals = next
	return p.clone(), nil
}

// Vote records voter's choice. A first vote adds to Total; a changed vote
// moves one count from the old option to the new one; repeating the same
// choice changes nothing. Unknown proposals are a silent no-op.
func (s *Store) Vote(ctx context.Context, proposalID string, voter identity.Member, choice Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(proposalID)
	if i < 0 {
		return nil
	}
	next := cloneAll(s.proposals)
	p := &next[i]
	prev, voted := p.VoteOf(voter.ID)
	if voted && prev == choice {
		return nil
	}

	ballot := Ballot{Voter: voter, Choice: choice, Date: s.now().Format(DateLayout)}
	if voted {
		p.Votes.add(prev, -1)
		for j := range p.Ballots {
			if p.Ballots[j].Voter.ID == voter.ID {
				p.Ballots[j] = ballot
			}
		}
	} else {
		p.Votes.Total++
		p.Ballots = append(p.Ballots, ballot)
	}
	p.Votes.add(choice, 1)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.proposals = next
	return nil
}

func (t *Tally) add(c Choice, n int) {
	if c == Yes {
		t.Yes += n
	} else {
		t.No += n
	}
}

func (s *Store) Proposals() []Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.proposals)
}

func (s *Store) Get(proposalID string) (Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(proposalID); i >= 0 {
		return s.proposals[i].clone(), true
	}
	return Proposal{}, false
}

// VotesBy lists memberID's ballots in proposal order.
func (s *Store) VotesBy(memberID string) []CastVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []CastVote{}
	for _, p := range s.proposals {
		for _, b := range p.Ballots {
			if b.Voter.ID == memberID {
				out = append(out, CastVote{ProposalID: p.ID, Title: p.Title, Creator: p.Creator, Choice: b.Choice, Date: b.Date})
			}
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.proposals {
		if s.proposals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) exists(id string) bool { return s.indexOf(id) >= 0 }

func (s *Store) persist(ctx context.Context, proposals []Proposal) error {
	var doc persisted
	doc.State.Proposals = proposals
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, kv.KeyProposals, b); err != nil {
		return fmt.Errorf("persist proposals: %w", err)
	}
	return nil
}

func cloneAll(in []Proposal) []Proposal {
	out := make([]Proposal, len(in))
	for i, p := range in {
		out[i] = p.clone()
	}
	return out
}
