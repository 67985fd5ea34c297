// Package marketplace runs the candidate, recruiter and community workflows
// on top of the entity stores. Job and application workflows first ask the
// wallet to sign an advisory message; a missing wallet or a refusal is logged
// and the workflow goes on. Skill, endorsement and governance workflows need
// the signature and stop without it.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// DefaultPayoutAddress receives payments for candidates without a wallet.
const DefaultPayoutAddress = "0x1234567890123456789012345678901234567890"

type UseCase interface {
	Login(ctx context.Context, email, password string, role identity.Role) (identity.Result, error)
	Signup(ctx context.Context, in identity.SignupInput) (identity.Result, error)

	PostJob(ctx context.Context, recruiter identity.Identity, f job.Fields) (job.Job, error)
	SetJobStatus(ctx context.Context, recruiter identity.Identity, jobID string, status job.Status) (job.Job, error)
	ReleasePayment(ctx context.Context, recruiter identity.Identity, jobID string) (Payment, error)
	RecruiterStats(recruiterID string) Stats

	Apply(ctx context.Context, candidate identity.Identity, in ApplyInput) (application.Application, error)
	Shortlist(ctx context.Context, applicationID string) (application.Application, error)
	Reject(ctx context.Context, applicationID string) (application.Application, error)
	RemoveFromShortlist(ctx context.Context, applicationID string) (application.Application, error)
	Withdraw(ctx context.Context, candidate identity.Identity, applicationID string) (application.Application, error)
	UpdateApplicationResume(ctx context.Context, candidate identity.Identity, applicationID string, meta *resume.Meta) (application.Application, error)
	UpdateProfile(ctx context.Context, candidate identity.Identity, in ProfileInput) (Profile, error)

	SubmitSkill(ctx context.Context, owner identity.Identity, in SkillInput) (skill.Skill, error)
	VerifySkill(ctx context.Context, reviewer identity.Identity, skillID string) (skill.Skill, error)
	RejectSkill(ctx context.Context, reviewer identity.Identity, skillID string) (skill.Skill, error)
	MintCertificate(ctx context.Context, owner identity.Identity, skillID string) (skill.Skill, error)
	Endorse(ctx context.Context, from identity.Identity, in EndorseInput) (skill.Endorsement, error)
	CreateProposal(ctx context.Context, creator identity.Identity, in ProposalInput) (governance.Proposal, error)
	Vote(ctx context.Context, voter identity.Identity, proposalID string, choice governance.Choice) (governance.Proposal, error)
	Leaderboard(by Ranking) ([]Standing, error)
}

// Stores are the collections the workflows mutate.
type Stores struct {
	Jobs         *job.Store
	Applications *application.Store
	Skills       *skill.Store
	Proposals    *governance.Store
}

type service struct {
	identity identity.UseCase
	jobs     *job.Store
	apps     *application.Store
	skills   *skill.Store
	props    *governance.Store
	wallet   Wallet
	notifier notify.Notifier
	payout   string
}

type Option func(*service)

func WithNotifier(n notify.Notifier) Option {
	return func(s *service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPayoutFallback replaces DefaultPayoutAddress.
func WithPayoutFallback(address string) Option {
	return func(s *service) {
		if address != "" {
			s.payout = address
		}
	}
}

func NewService(ids identity.UseCase, stores Stores, w Wallet, opts ...Option) UseCase {
	s := &service{
		identity: ids,
		jobs:     stores.Jobs,
		apps:     stores.Applications,
		skills:   stores.Skills,
		props:    stores.Proposals,
		wallet:   w,
		notifier: notify.Discard,
		payout:   DefaultPayoutAddress,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Login(ctx context.Context, email, password string, role identity.Role) (identity.Result, error) {
	res, err := s.identity.Login(ctx, email, password, role)
	if err != nil {
		s.notify(ctx, notify.Error("Login failed", "Invalid email or password. Please try again."))
		return identity.Result{}, err
	}
	s.sign(ctx, fmt.Sprintf("Login as %s: %s", role, res.Identity.Email))
	s.notify(ctx, notify.Success("Login successful", "Welcome back, "+res.Identity.Name+"!"))
	return res, nil
}

func (s *service) Signup(ctx context.Context, in identity.SignupInput) (identity.Result, error) {
	res, err := s.identity.Signup(ctx, in)
	if err != nil {
		s.notify(ctx, notify.Error("Registration failed", err.Error()))
		return identity.Result{}, err
	}
	s.sign(ctx, fmt.Sprintf("Register as %s: %s", in.Role, res.Identity.Email))
	s.notify(ctx, notify.Success("Registration successful", "Welcome to Proof of Talent, "+res.Identity.Name+"!"))
	return res, nil
}

func (s *service) PostJob(ctx context.Context, recruiter identity.Identity, f job.Fields) (job.Job, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Company = strings.TrimSpace(f.Company)
	f.Budget = strings.TrimSpace(f.Budget)
	if f.Title == "" || f.Company == "" || strings.TrimSpace(f.Description) == "" || f.Budget == "" {
		return job.Job{}, apperr.Validation("title, company, description and budget are required")
	}
	if f.Location == "" {
		f.Location = "Remote"
	}
	f.RecruiterID = recruiter.ID

	payload, err := json.Marshal(f)
	if err != nil {
		return job.Job{}, err
	}
	s.sign(ctx, "Post job: "+string(payload))

	j, err := s.jobs.AddJob(ctx, f)
	if err != nil {
		s.notify(ctx, notify.Error("Posting failed", "Failed to post job. Please try again."))
		return job.Job{}, err
	}
	s.notify(ctx, notify.Success("Job Posted", fmt.Sprintf("Your job %q has been posted successfully.", j.Title)))
	return j, nil
}

func (s *service) SetJobStatus(ctx context.Context, recruiter identity.Identity, jobID string, status job.Status) (job.Job, error) {
	if _, err := s.ownedJob(recruiter, jobID); err != nil {
		return job.Job{}, err
	}
	if err := s.jobs.UpdateJobStatus(ctx, jobID, status); err != nil {
		return job.Job{}, err
	}
	j, _ := s.jobs.Get(jobID)
	return j, nil
}

// ReleasePayment pays the first shortlisted applicant of jobID the job's
// budget. A failed transfer is reported in the result, not as an error.
func (s *service) ReleasePayment(ctx context.Context, recruiter identity.Identity, jobID string) (Payment, error) {
	j, err := s.ownedJob(recruiter, jobID)
	if err != nil {
		return Payment{}, err
	}
	var chosen *application.Application
	for _, a := range s.apps.ApplicationsByJob(jobID) {
		if a.Status == application.StatusShortlisted {
			chosen = &a
			break
		}
	}
	if chosen == nil {
		s.notify(ctx, notify.Error("Payment failed", "Failed to release payment. Please try again."))
		return Payment{}, ErrNoShortlisted
	}

	p := Payment{
		JobID:         jobID,
		ApplicationID: chosen.ID,
		CandidateName: chosen.Candidate.Name,
		Amount:        strings.TrimSpace(strings.Replace(j.Budget, " ETH", "", 1)),
		Recipient:     s.payout,
	}
	if wallet.ValidAddress(chosen.Candidate.Wallet) {
		p.Recipient = chosen.Candidate.Wallet
	}

	tx, err := s.wallet.SendTransaction(ctx, p.Recipient, p.Amount)
	if err != nil {
		log.Printf("level=warn msg=\"payment transfer failed\" job=%s application=%s err=%v", jobID, chosen.ID, err)
		p.Error = err.Error()
	} else {
		p.TxHash, p.Sent = tx.Hash, true
	}
	s.notify(ctx, notify.Success("Payment released", fmt.Sprintf("Payment of %s has been sent to %s", j.Budget, chosen.Candidate.Name)))
	return p, nil
}

func (s *service) RecruiterStats(recruiterID string) Stats {
	var st Stats
	for _, j := range s.jobs.RecruiterJobs(recruiterID) {
		st.TotalJobs++
		if j.Status == job.StatusActive {
			st.ActiveJobs++
		}
		for _, a := range s.apps.ApplicationsByJob(j.ID) {
			st.TotalApplications++
			switch a.Status {
			case application.StatusShortlisted:
				st.Shortlisted++
			case application.StatusPending:
				st.Pending++
			case application.StatusRejected:
				st.Rejected++
			}
		}
	}
	return st
}

func (s *service) Apply(ctx context.Context, candidate identity.Identity, in ApplyInput) (application.Application, error) {
	j, ok := s.jobs.Get(in.JobID)
	if !ok {
		return application.Application{}, ErrJobNotFound
	}
	if j.Status != job.StatusActive {
		return application.Application{}, ErrJobNotActive
	}
	meta := in.Resume
	if meta == nil {
		meta = s.apps.CandidateResume(candidate.ID)
	}
	if meta == nil {
		s.notify(ctx, notify.Error("Resume required", "Please upload your resume before applying."))
		return application.Application{}, ErrResumeRequired
	}
	if in.Wallet != "" && !wallet.ValidAddress(in.Wallet) {
		return application.Application{}, apperr.Validation("invalid payout wallet %q", in.Wallet)
	}

	s.sign(ctx, fmt.Sprintf("Apply for job ID: %s\nApplication: %s", j.ID, in.Application))

	a, err := s.apps.AddApplication(ctx, application.Fields{
		JobID:       j.ID,
		Job:         application.JobSnapshot{Title: j.Title, Company: j.Company, Location: j.Location},
		Candidate:   candidateSnapshot(candidate, in),
		Application: in.Application,
		Resume:      meta,
	})
	if err != nil {
		s.notify(ctx, notify.Error("Application failed", "Failed to submit application. Please try again."))
		return application.Application{}, err
	}
	s.notify(ctx, notify.Success("Application submitted", "Your job application has been submitted successfully"))
	return a, nil
}

func (s *service) Shortlist(ctx context.Context, applicationID string) (application.Application, error) {
	a, err := s.reviewable(applicationID)
	if err != nil {
		return application.Application{}, err
	}
	s.sign(ctx, fmt.Sprintf("Accept applicant ID: %s for job ID: %s", a.ID, a.JobID))
	if err := s.apps.ShortlistCandidate(ctx, a.ID); err != nil {
		s.notify(ctx, notify.Error("Shortlisting failed", "Failed to shortlist candidate. Please try again."))
		return application.Application{}, err
	}
	s.notify(ctx, notify.Success("Candidate shortlisted", "You have shortlisted this candidate for the job"))
	return s.reload(a.ID)
}

func (s *service) Reject(ctx context.Context, applicationID string) (application.Application, error) {
	a, ok := s.apps.Get(applicationID)
	if !ok {
		return application.Application{}, ErrAppNotFound
	}
	s.sign(ctx, fmt.Sprintf("Reject applicant ID: %s for job ID: %s", a.ID, a.JobID))
	if err := s.apps.RejectCandidate(ctx, a.ID); err != nil {
		s.notify(ctx, notify.Error("Rejection failed", "Failed to reject application. Please try again."))
		return application.Application{}, err
	}
	s.notify(ctx, notify.Success("Application rejected", "You have rejected this candidate's application"))
	return s.reload(a.ID)
}

func (s *service) RemoveFromShortlist(ctx context.Context, applicationID string) (application.Application, error) {
	a, err := s.reviewable(applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if err := s.apps.RemoveFromShortlist(ctx, a.ID); err != nil {
		return application.Application{}, err
	}
	s.notify(ctx, notify.Success("Candidate removed", "The candidate has been removed from your shortlist."))
	return s.reload(a.ID)
}

// Withdraw signs the withdrawal and notifies. The application record is left
// as it is.
func (s *service) Withdraw(ctx context.Context, candidate identity.Identity, applicationID string) (application.Application, error) {
	a, err := s.ownedApplication(candidate, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	s.sign(ctx, "Withdraw application ID: "+a.ID)
	s.notify(ctx, notify.Success("Application withdrawn", "Your application has been withdrawn successfully"))
	return a, nil
}

func (s *service) UpdateApplicationResume(ctx context.Context, candidate identity.Identity, applicationID string, meta *resume.Meta) (application.Application, error) {
	a, err := s.ownedApplication(candidate, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if err := s.apps.UpdateResumeForApplication(ctx, a.ID, meta); err != nil {
		return application.Application{}, err
	}
	return s.reload(a.ID)
}

func (s *service) UpdateProfile(ctx context.Context, candidate identity.Identity, in ProfileInput) (Profile, error) {
	form := struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}{in.Name, in.Username, in.Bio, in.Avatar}
	payload, err := json.Marshal(form)
	if err != nil {
		return Profile{}, err
	}
	s.sign(ctx, "Update profile: "+string(payload))

	p := Profile{Name: in.Name, Username: in.Username, Bio: in.Bio, Avatar: in.Avatar}
	if in.Resume != nil {
		if err := s.apps.UpdateResumeForCandidate(ctx, candidate.ID, in.Resume); err != nil {
			s.notify(ctx, notify.Error("Update failed", "Failed to update profile. Please try again."))
			return Profile{}, err
		}
		p.Updated = len(s.apps.ApplicationsByCandidate(candidate.ID))
	}
	p.Resume = s.apps.CandidateResume(candidate.ID)
	s.notify(ctx, notify.Success("Profile updated", "Your profile has been successfully updated"))
	return p, nil
}

func (s *service) sign(ctx context.Context, message string) {
	if _, err := s.wallet.SignMessage(ctx, message); err != nil {
		log.Printf("level=info msg=\"wallet not connected or signing rejected, continuing\" code=%s", apperr.CodeOf(err))
	}
}

func (s *service) notify(ctx context.Context, n notify.Notification) {
	s.notifier.Notify(ctx, n)
}

func (s *service) ownedJob(recruiter identity.Identity, jobID string) (job.Job, error) {
	j, ok := s.jobs.Get(jobID)
	if !ok {
		return job.Job{}, ErrJobNotFound
	}
	if j.RecruiterID != recruiter.ID {
		return job.Job{}, ErrNotJobOwner
	}
	return j, nil
}

func (s *service) ownedApplication(candidate identity.Identity, applicationID string) (application.Application, error) {
	a, ok := s.apps.Get(applicationID)
	if !ok || a.Candidate.ID != candidate.ID {
		return application.Application{}, ErrAppNotFound
	}
	return a, nil
}

// reviewable returns an application that can still move between pending
// and shortlisted.
func (s *service) reviewable(applicationID string) (application.Application, error) {
	a, ok := s.apps.Get(applicationID)
	if !ok {
		return application.Application{}, ErrAppNotFound
	}
	if a.Status == application.StatusRejected {
		return application.Application{}, ErrRejected
	}
	return a, nil
}

func (s *service) reload(applicationID string) (application.Application, error) {
	a, ok := s.apps.Get(applicationID)
	if !ok {
		return application.Application{}, ErrAppNotFound
	}
	return a, nil
}

func candidateSnapshot(id identity.Identity, in ApplyInput) application.Candidate {
	c := defaultCandidate
	c.ID, c.Name, c.Email = id.ID, id.Name, id.Email
	c.Skills = append([]string(nil), defaultCandidate.Skills...)
	if in.Title != "" {
		c.Title = in.Title
	}
	if in.Location != "" {
		c.Location = in.Location
	}
	if in.Avatar != "" {
		c.Avatar = in.Avatar
	}
	if len(in.Skills) > 0 {
		c.Skills = append([]string(nil), in.Skills...)
	}
	c.Wallet = in.Wallet
	return c
}
