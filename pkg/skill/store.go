// Package skill keeps skill claims with their verification state and the
// endorsements members give each other.
package skill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/idgen"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

// DateLayout matches the job and application stores.
const DateLayout = "Jan 2, 2006"

type persisted struct {
	State struct {
		Skills       []Skill       `json:"skills"`
		Endorsements []Endorsement `json:"endorsements"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store owns both ordered collections. Every mutation is written through to
// the kv mirror before it returns; unknown ids are silent no-ops.
type Store struct {
	mu           sync.RWMutex
	kv           kv.Store
	skillIDs     *idgen.Generator
	endorseIDs   *idgen.Generator
	now          func() time.Time
	skills       []Skill
	endorsements []Endorsement
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore hydrates from kv, falling back to the seed collections when the
// mirror is empty or unreadable.
func NewStore(ctx context.Context, mirror kv.Store, skills []Skill, endorsements []Endorsement, opts ...Option) (*Store, error) {
	s := &Store{kv: mirror, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.skillIDs = idgen.New("skill", s.now)
	s.endorseIDs = idgen.New("end", s.now)

	raw, err := mirror.Get(ctx, kv.KeySkills)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.skills, s.endorsements = append([]Skill(nil), skills...), append([]Endorsement(nil), endorsements...)
	case err != nil:
		return nil, fmt.Errorf("load skills: %w", err)
	default:
		var doc persisted
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("level=warn msg=\"discarding unreadable skill mirror\" err=%v", err)
			s.skills, s.endorsements = append([]Skill(nil), skills...), append([]Endorsement(nil), endorsements...)
		} else {
			s.skills, s.endorsements = doc.State.Skills, doc.State.Endorsements
		}
	}
	return s, nil
}

// Submit appends a pending claim.
func (s *Store) Submit(ctx context.Context, f Fields) (Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk := Skill{
		ID:          s.skillIDs.Next(s.skillExists),
		Name:        f.Name,
		Experience:  f.Experience,
		ProofLink:   f.ProofLink,
		Description: f.Description,
		Owner:       f.Owner,
		Status:      StatusPending,
		Date:        s.now().Format(DateLayout),
	}
	next := append(append([]Skill(nil), s.skills...), sk)
	if err := s.persist(ctx, next, s.endorsements); err != nil {
		return Skill{}, err
	}
	s.skills = next
	return sk, nil
}

// Verify moves a pending claim to verified, recording the reviewer.
func (s *Store) Verify(ctx context.Context, skillID, reviewerID string) error {
	return s.review(ctx, skillID, reviewerID, StatusVerified)
}

// Reject moves a pending claim to rejected, recording the reviewer.
func (s *Store) Reject(ctx context.Context, skillID, reviewerID string) error {
	return s.review(ctx, skillID, reviewerID, StatusRejected)
}

func (s *Store) review(ctx context.Context, skillID, reviewerID string, status Status) error {
	return s.updateSkill(ctx, skillID, func(sk *Skill) bool {
		if sk.Status != StatusPending {
			return false
		}
		sk.Status, sk.ReviewerID = status, reviewerID
		return true
	})
}

// MarkCertified flags a verified claim as minted.
func (s *Store) MarkCertified(ctx context.Context, skillID string) error {
	return s.updateSkill(ctx, skillID, func(sk *Skill) bool {
		if sk.Status != StatusVerified || sk.Certified {
			return false
		}
		sk.Certified = true
		return true
	})
}

// Endorse appends an endorsement.
func (s *Store) Endorse(ctx context.Context, f EndorsementFields) (Endorsement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Endorsement{
		ID:     s.endorseIDs.Next(s.endorsementExists),
		From:   f.From,
		To:     f.To,
		Skill:  f.Skill,
		Reason: f.Reason,
		Date:   s.now().Format(DateLayout),
	}
	next := append(append([]Endorsement(nil), s.endorsements...), e)
	if err := s.persist(ctx, s.skills, next); err != nil {
		return Endorsement{}, err
	}
	s.endorsements = next
	return e, nil
}

func (s *Store) Skills() []Skill {
	return s.filterSkills(func(Skill) bool { return true })
}

// Queue returns the pending claims in submission order.
func (s *Store) Queue() []Skill {
	return s.filterSkills(func(sk Skill) bool { return sk.Status == StatusPending })
}

func (s *Store) SkillsByOwner(ownerID string) []Skill {
	return s.filterSkills(func(sk Skill) bool { return sk.Owner.ID == ownerID })
}

func (s *Store) Get(skillID string) (Skill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.skillIndex(skillID); i >= 0 {
		return s.skills[i], true
	}
	return Skill{}, false
}

func (s *Store) Endorsements() []Endorsement {
	return s.filterEndorsements(func(Endorsement) bool { return true })
}

// EndorsementsFor returns the endorsements memberID received.
func (s *Store) EndorsementsFor(memberID string) []Endorsement {
	return s.filterEndorsements(func(e Endorsement) bool { return e.To.ID == memberID })
}

// updateSkill applies mutate to skillID and persists when mutate reports a
// change.
func (s *Store) updateSkill(ctx context.Context, skillID string, mutate func(*Skill) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.skillIndex(skillID)
	if i < 0 {
		return nil
	}
	next := append([]Skill(nil), s.skills...)
	if !mutate(&next[i]) {
		return nil
	}
	if err := s.persist(ctx, next, s.endorsements); err != nil {
		return err
	}
	s.skills = next
	return nil
}

func (s *Store) filterSkills(keep func(Skill) bool) []Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		if keep(sk) {
			out = append(out, sk)
		}
	}
	return out
}

func (s *Store) filterEndorsements(keep func(Endorsement) bool) []Endorsement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Endorsement, 0, len(s.endorsements))
	for _, e := range s.endorsements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) skillIndex(id string) int {
	for i := range s.skills {
		if s.skills[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) skillExists(id string) bool { return s.skillIndex(id) >= 0 }

func (s *Store) endorsementExists(id string) bool {
	for _, e := range s.endorsements {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) persist(ctx context.Context, skills []Skill, endorsements []Endorsement) error {
	var doc persisted
	doc.State.Skills = skills
	doc.State.Endorsements = endorsements
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, kv.KeySkills, b); err != nil {
		return fmt.Errorf("persist skills: %w", err)
	}
	return nil
}
