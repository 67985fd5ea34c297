package application

import "github.com/mk-2871/Proof-of-Talent/pkg/resume"

// Status of an application in the review workflow.
type Status string

const (
	StatusPending     Status = "pending"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
)

// JobSnapshot is copied from the posting at apply time and never refreshed.
type JobSnapshot struct {
	Title    string `json:"title" yaml:"title"`
	Company  string `json:"company" yaml:"company"`
	Location string `json:"location" yaml:"location"`
}

// Candidate is the applicant as they presented themselves when applying.
type Candidate struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Title    string   `json:"title" yaml:"title"`
	Email    string   `json:"email" yaml:"email"`
	Location string   `json:"location" yaml:"location"`
	Avatar   string   `json:"avatar" yaml:"avatar"`
	Skills   []string `json:"skills" yaml:"skills"`
	Wallet   string   `json:"wallet,omitempty" yaml:"wallet,omitempty"`
}

// Application links a candidate to a job posting. JobID is a weak reference.
type Application struct {
	ID          string       `json:"id" yaml:"id"`
	JobID       string       `json:"jobId" yaml:"jobId"`
	Job         JobSnapshot  `json:"job" yaml:"job"`
	Candidate   Candidate    `json:"candidate" yaml:"candidate"`
	Application string       `json:"application" yaml:"application"`
	Resume      *resume.Meta `json:"resume" yaml:"resume"`
	Date        string       `json:"date" yaml:"date"`
	Status      Status       `json:"status" yaml:"status"`
}

// Fields are the caller-supplied parts of a new application.
type Fields struct {
	JobID       string       `json:"jobId"`
	Job         JobSnapshot  `json:"job"`
	Candidate   Candidate    `json:"candidate"`
	Application string       `json:"application"`
	Resume      *resume.Meta `json:"resume"`
}

func (a Application) clone() Application {
	a.Candidate.Skills = append([]string(nil), a.Candidate.Skills...)
	if a.Resume != nil {
		r := *a.Resume
		a.Resume = &r
	}
	return a
}
