package marketplace

import (
	"context"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
	"github.com/mk-2871/Proof-of-Talent/pkg/session"
)

// Wallet is the part of the session the workflows use. session.Manager
// implements it.
type Wallet interface {
	SignMessage(ctx context.Context, text string) (string, error)
	SendTransaction(ctx context.Context, to, amount string) (session.TxResult, error)
}

var (
	ErrResumeRequired = apperr.New(apperr.CodeValidation, "please upload your resume before applying")
	ErrJobNotFound    = apperr.New(apperr.CodeNotFound, "job not found")
	ErrAppNotFound    = apperr.New(apperr.CodeNotFound, "application not found")
	ErrNotJobOwner    = apperr.New(apperr.CodeForbidden, "job belongs to another recruiter")
	ErrJobNotActive   = apperr.New(apperr.CodeConflict, "job is not accepting applications")
	ErrRejected       = apperr.New(apperr.CodeConflict, "application was already rejected")
	ErrNoShortlisted  = apperr.New(apperr.CodeNotFound, "no shortlisted candidate found")
)

// Candidate profile used when the applicant does not send one.
var defaultCandidate = application.Candidate{
	Title:    "Blockchain Developer",
	Location: "New York, USA",
	Avatar:   "/placeholder.svg?height=40&width=40&text=AJ",
	Skills:   []string{"Solidity", "Ethereum", "Smart Contracts", "DeFi"},
}

// ApplyInput is a candidate's application. Resume falls back to the
// candidate's profile resume when nil.
type ApplyInput struct {
	JobID       string       `json:"jobId"`
	Application string       `json:"application"`
	Resume      *resume.Meta `json:"resume"`
	Title       string       `json:"title"`
	Location    string       `json:"location"`
	Avatar      string       `json:"avatar"`
	Skills      []string     `json:"skills"`
	Wallet      string       `json:"wallet"`
}

// ProfileInput is a profile update. A non-nil Resume replaces the resume on
// every application of the candidate.
type ProfileInput struct {
	Name     string       `json:"name"`
	Username string       `json:"username"`
	Bio      string       `json:"bio"`
	Avatar   string       `json:"avatar"`
	Resume   *resume.Meta `json:"resume,omitempty"`
}

// Profile is the result of a profile update.
type Profile struct {
	Name     string       `json:"name"`
	Username string       `json:"username"`
	Bio      string       `json:"bio"`
	Avatar   string       `json:"avatar"`
	Resume   *resume.Meta `json:"resume"`
	Updated  int          `json:"updatedApplications"`
}

// Payment reports a release attempt. Sent is false when the wallet refused
// or failed; the release itself is still recorded as done.
type Payment struct {
	JobID         string `json:"jobId"`
	ApplicationID string `json:"applicationId"`
	CandidateName string `json:"candidateName"`
	Amount        string `json:"amount"`
	Recipient     string `json:"recipient"`
	TxHash        string `json:"txHash,omitempty"`
	Sent          bool   `json:"sent"`
	Error         string `json:"error,omitempty"`
}

// Stats summarises a recruiter's postings.
type Stats struct {
	ActiveJobs        int `json:"activeJobs"`
	TotalJobs         int `json:"totalJobs"`
	TotalApplications int `json:"totalApplications"`
	Shortlisted       int `json:"shortlisted"`
	Pending           int `json:"pending"`
	Rejected          int `json:"rejected"`
}

var (
	ErrSkillNotFound    = apperr.New(apperr.CodeNotFound, "skill not found")
	ErrSkillReviewed    = apperr.New(apperr.CodeConflict, "skill was already reviewed")
	ErrOwnSkill         = apperr.New(apperr.CodeForbidden, "you cannot review your own skill")
	ErrNotSkillOwner    = apperr.New(apperr.CodeForbidden, "skill belongs to another member")
	ErrSkillUnverified  = apperr.New(apperr.CodeConflict, "only verified skills can be certified")
	ErrSelfEndorsement  = apperr.New(apperr.CodeValidation, "you cannot endorse yourself")
	ErrProposalNotFound = apperr.New(apperr.CodeNotFound, "proposal not found")
)

// SkillInput is a skill verification request. Field order is the order of
// the signed payload.
type SkillInput struct {
	SkillName   string `json:"skillName"`
	Experience  string `json:"experience"`
	ProofLink   string `json:"proofLink"`
	Description string `json:"description"`
}

// EndorseInput names the endorsed member. Name is used when the member has
// no community record yet.
type EndorseInput struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

type ProposalInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

// Ranking selects the leaderboard metric.
type Ranking string

const (
	RankVerified Ranking = "verified"
	RankEndorsed Ranking = "endorsed"
	RankDAO      Ranking = "dao"
)

// DAO score weights.
const (
	proposalPoints = 10
	ballotPoints   = 5
)

// Standing is one leaderboard row.
type Standing struct {
	Rank   int             `json:"rank"`
	Member identity.Member `json:"member"`
	Score  int             `json:"score"`
}
