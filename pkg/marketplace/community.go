package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

func (s *service) SubmitSkill(ctx context.Context, owner identity.Identity, in SkillInput) (skill.Skill, error) {
	in.SkillName = strings.TrimSpace(in.SkillName)
	in.Experience = strings.TrimSpace(in.Experience)
	in.ProofLink = strings.TrimSpace(in.ProofLink)
	in.Description = strings.TrimSpace(in.Description)
	if in.SkillName == "" || in.Experience == "" || in.ProofLink == "" || in.Description == "" {
		return skill.Skill{}, apperr.Validation("skill name, experience, proof link and description are required")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return skill.Skill{}, err
	}
	failed := notify.Error("Submission failed", "Failed to submit skill. Please try again.")
	if err := s.signOrAbort(ctx, "Submit skill for verification: "+string(payload), failed); err != nil {
		return skill.Skill{}, err
	}

	sk, err := s.skills.Submit(ctx, skill.Fields{
		Name:        in.SkillName,
		Experience:  in.Experience,
		ProofLink:   in.ProofLink,
		Description: in.Description,
		Owner:       owner.Member(),
	})
	if err != nil {
		s.notify(ctx, failed)
		return skill.Skill{}, err
	}
	s.notify(ctx, notify.Success("Skill Submitted", fmt.Sprintf("Your skill %q has been submitted for verification.", sk.Name)))
	return sk, nil
}

func (s *service) VerifySkill(ctx context.Context, reviewer identity.Identity, skillID string) (skill.Skill, error) {
	sk, err := s.reviewableSkill(reviewer, skillID)
	if err != nil {
		return skill.Skill{}, err
	}
	failed := notify.Error("Verification failed", "Failed to verify skill. Please try again.")
	if err := s.signOrAbort(ctx, "Verify skill ID: "+sk.ID, failed); err != nil {
		return skill.Skill{}, err
	}
	if err := s.skills.Verify(ctx, sk.ID, reviewer.ID); err != nil {
		s.notify(ctx, failed)
		return skill.Skill{}, err
	}
	s.notify(ctx, notify.Success("Skill verified", "You have successfully verified this skill"))
	return s.reloadSkill(sk.ID)
}

func (s *service) RejectSkill(ctx context.Context, reviewer identity.Identity, skillID string) (skill.Skill, error) {
	sk, err := s.reviewableSkill(reviewer, skillID)
	if err != nil {
		return skill.Skill{}, err
	}
	failed := notify.Error("Rejection failed", "Failed to reject skill. Please try again.")
	if err := s.signOrAbort(ctx, "Reject skill ID: "+sk.ID, failed); err != nil {
		return skill.Skill{}, err
	}
	if err := s.skills.Reject(ctx, sk.ID, reviewer.ID); err != nil {
		s.notify(ctx, failed)
		return skill.Skill{}, err
	}
	s.notify(ctx, notify.Success("Skill rejected", "You have rejected this skill verification"))
	return s.reloadSkill(sk.ID)
}

// MintCertificate marks one of the owner's verified skills as minted.
// Minting twice signs again but leaves the record as it is.
func (s *service) MintCertificate(ctx context.Context, owner identity.Identity, skillID string) (skill.Skill, error) {
	sk, ok := s.skills.Get(skillID)
	if !ok {
		return skill.Skill{}, ErrSkillNotFound
	}
	if sk.Owner.ID != owner.ID {
		return skill.Skill{}, ErrNotSkillOwner
	}
	if sk.Status != skill.StatusVerified {
		return skill.Skill{}, ErrSkillUnverified
	}
	failed := notify.Error("Minting failed", "Failed to mint certificate. Please try again.")
	if err := s.signOrAbort(ctx, "Mint certificate for skill ID: "+sk.ID, failed); err != nil {
		return skill.Skill{}, err
	}
	if err := s.skills.MarkCertified(ctx, sk.ID); err != nil {
		s.notify(ctx, failed)
		return skill.Skill{}, err
	}
	s.notify(ctx, notify.Success("Certificate minted", "Your skill certificate has been minted as an NFT"))
	return s.reloadSkill(sk.ID)
}

func (s *service) Endorse(ctx context.Context, from identity.Identity, in EndorseInput) (skill.Endorsement, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return skill.Endorsement{}, apperr.Validation("user id is required")
	}
	if in.UserID == from.ID {
		return skill.Endorsement{}, ErrSelfEndorsement
	}
	to, ok := s.members()[in.UserID]
	if !ok {
		to = identity.Member{ID: in.UserID, Name: strings.TrimSpace(in.Name)}
	}

	failed := notify.Error("Endorsement failed", "Failed to endorse user. Please try again.")
	if err := s.signOrAbort(ctx, "Endorse user: "+in.UserID, failed); err != nil {
		return skill.Endorsement{}, err
	}
	e, err := s.skills.Endorse(ctx, skill.EndorsementFields{
		From:   from.Member(),
		To:     to,
		Skill:  strings.TrimSpace(in.Skill),
		Reason: strings.TrimSpace(in.Reason),
	})
	if err != nil {
		s.notify(ctx, failed)
		return skill.Endorsement{}, err
	}
	s.notify(ctx, notify.Success("Endorsement sent", "You have successfully endorsed this user"))
	return e, nil
}

func (s *service) CreateProposal(ctx context.Context, creator identity.Identity, in ProposalInput) (governance.Proposal, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Deadline = strings.TrimSpace(in.Deadline)
	if in.Title == "" || in.Description == "" || in.Deadline == "" {
		return governance.Proposal{}, apperr.Validation("title, description and deadline are required")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return governance.Proposal{}, err
	}
	failed := notify.Error("Creation failed", "Failed to create proposal. Please try again.")
	if err := s.signOrAbort(ctx, "Create proposal: "+string(payload), failed); err != nil {
		return governance.Proposal{}, err
	}

	p, err := s.props.Create(ctx, governance.Fields{
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Creator:     creator.Member(),
	})
	if err != nil {
		s.notify(ctx, failed)
		return governance.Proposal{}, err
	}
	s.notify(ctx, notify.Success("Proposal Created", fmt.Sprintf("Your proposal %q has been created successfully.", p.Title)))
	return p, nil
}

// Vote records the voter's choice. Voting again with the other choice moves
// the vote.
func (s *service) Vote(ctx context.Context, voter identity.Identity, proposalID string, choice governance.Choice) (governance.Proposal, error) {
	if !choice.Valid() {
		return governance.Proposal{}, governance.ErrInvalidChoice
	}
	p, ok := s.props.Get(proposalID)
	if !ok {
		return governance.Proposal{}, ErrProposalNotFound
	}
	failed := notify.Error("Voting failed", "Failed to record your vote. Please try again.")
	if err := s.signOrAbort(ctx, fmt.Sprintf("Vote %s on proposal ID: %s", choice, p.ID), failed); err != nil {
		return governance.Proposal{}, err
	}
	if err := s.props.Vote(ctx, p.ID, voter.Member(), choice); err != nil {
		s.notify(ctx, failed)
		return governance.Proposal{}, err
	}
	s.notify(ctx, notify.Success("Vote recorded", fmt.Sprintf("You voted %s on the proposal", choice)))
	p, _ = s.props.Get(p.ID)
	return p, nil
}

// Leaderboard ranks every member known to the community stores. Ties are
// ordered by name and still get distinct ranks.
func (s *service) Leaderboard(by Ranking) ([]Standing, error) {
	scores := make(map[string]int)
	switch by {
	case RankVerified:
		for _, sk := range s.skills.Skills() {
			if sk.Status == skill.StatusVerified {
				scores[sk.Owner.ID]++
			}
		}
	case RankEndorsed:
		for _, e := range s.skills.Endorsements() {
			scores[e.To.ID]++
		}
	case RankDAO:
		for _, p := range s.props.Proposals() {
			scores[p.Creator.ID] += proposalPoints
			for _, b := range p.Ballots {
				scores[b.Voter.ID] += ballotPoints
			}
		}
	default:
		return nil, apperr.Validation("ranking must be verified, endorsed or dao")
	}

	members := s.members()
	out := make([]Standing, 0, len(members))
	for id, m := range members {
		out = append(out, Standing{Member: m, Score: scores[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Member.Name != out[j].Member.Name {
			return out[i].Member.Name < out[j].Member.Name
		}
		return out[i].Member.ID < out[j].Member.ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// signOrAbort asks the wallet for a signature the workflow cannot go on
// without. On failure the user is told and the wallet error is returned.
func (s *service) signOrAbort(ctx context.Context, message string, failed notify.Notification) error {
	if _, err := s.wallet.SignMessage(ctx, message); err != nil {
		log.Printf("level=warn msg=\"signature required, workflow stopped\" code=%s", apperr.CodeOf(err))
		s.notify(ctx, failed)
		return err
	}
	return nil
}

func (s *service) reviewableSkill(reviewer identity.Identity, skillID string) (skill.Skill, error) {
	sk, ok := s.skills.Get(skillID)
	if !ok {
		return skill.Skill{}, ErrSkillNotFound
	}
	if sk.Owner.ID == reviewer.ID {
		return skill.Skill{}, ErrOwnSkill
	}
	if sk.Status != skill.StatusPending {
		return skill.Skill{}, ErrSkillReviewed
	}
	return sk, nil
}

func (s *service) reloadSkill(skillID string) (skill.Skill, error) {
	sk, ok := s.skills.Get(skillID)
	if !ok {
		return skill.Skill{}, ErrSkillNotFound
	}
	return sk, nil
}

// members indexes everyone who owns a skill, takes part in an endorsement,
// created a proposal or cast a ballot. The first record seen wins.
func (s *service) members() map[string]identity.Member {
	out := make(map[string]identity.Member)
	add := func(m identity.Member) {
		if _, ok := out[m.ID]; !ok && m.ID != "" {
			out[m.ID] = m
		}
	}
	for _, sk := range s.skills.Skills() {
		add(sk.Owner)
	}
	for _, e := range s.skills.Endorsements() {
		add(e.From)
		add(e.To)
	}
	for _, p := range s.props.Proposals() {
		add(p.Creator)
		for _, b := range p.Ballots {
			add(b.Voter)
		}
	}
	return out
}
