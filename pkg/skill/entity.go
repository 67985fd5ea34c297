package skill

import (
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
)

// Status of a skill claim.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Skill is a claim submitted for peer verification. Only pending claims sit
// in the verification queue; verified and rejected are final.
type Skill struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Experience  string          `json:"experience" yaml:"experience"`
	ProofLink   string          `json:"proofLink" yaml:"proofLink"`
	Description string          `json:"description" yaml:"description"`
	Owner       identity.Member `json:"user" yaml:"user"`
	Status      Status          `json:"status" yaml:"status"`
	Date        string          `json:"date" yaml:"date"`
	ReviewerID  string          `json:"reviewerId,omitempty" yaml:"reviewerId"`
	Certified   bool            `json:"certified" yaml:"certified"`
}

// Fields are the caller-supplied parts of a new claim.
type Fields struct {
	Name        string
	Experience  string
	ProofLink   string
	Description string
	Owner       identity.Member
}

// Endorsement is one member vouching for another.
type Endorsement struct {
	ID     string          `json:"id" yaml:"id"`
	From   identity.Member `json:"from" yaml:"from"`
	To     identity.Member `json:"to" yaml:"to"`
	Skill  string          `json:"skill,omitempty" yaml:"skill"`
	Reason string          `json:"reason,omitempty" yaml:"reason"`
	Date   string          `json:"date" yaml:"date"`
}

type EndorsementFields struct {
	From   identity.Member
	To     identity.Member
	Skill  string
	Reason string
}
