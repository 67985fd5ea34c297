package job

import (
	"strings"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
)

// Status of a job posting.
type Status string

const (
	StatusActive Status = "active"
	StatusDraft  Status = "draft"
	StatusClosed Status = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDraft, StatusClosed:
		return true
	}
	return false
}

// ErrInvalidStatus is returned for a status outside the enum.
var ErrInvalidStatus = apperr.New(apperr.CodeValidation, "invalid job status")

// Job is a posting owned by a recruiter. Budget is a display string such as
// "0.5 ETH", not a parsed amount.
type Job struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Company     string   `json:"company" yaml:"company"`
	Description string   `json:"description" yaml:"description"`
	Budget      string   `json:"budget" yaml:"budget"`
	Location    string   `json:"location" yaml:"location"`
	Skills      []string `json:"skills" yaml:"skills"`
	Date        string   `json:"date" yaml:"date"`
	RecruiterID string   `json:"recruiterId" yaml:"recruiterId"`
	Status      Status   `json:"status" yaml:"status"`
}

// Fields are the caller-supplied parts of a new posting; the store assigns
// id, date and status.
type Fields struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Budget      string   `json:"budget"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	RecruiterID string   `json:"recruiterId"`
}

// SplitSkills turns "Solidity, ERC-20 ,DeFi" into a clean ordered list.
func SplitSkills(s string) []string {
	return cleanSkills(strings.Split(s, ","))
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (j Job) clone() Job {
	j.Skills = append([]string(nil), j.Skills...)
	return j
}
