package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/handlers"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/security/jwt"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Wallet       *handlers.WalletHandler
	Events       *handlers.EventsHandler
	Jobs         *handlers.JobsHandler
	Applications *handlers.ApplicationsHandler
	Resumes      *handlers.ResumesHandler
	Skills       *handlers.SkillsHandler
	Governance   *handlers.GovernanceHandler
}

// Register wires all HTTP routes onto given Fiber app. auth guards every
// route except health and the signup/login pair.
func Register(app *fiber.App, h Handlers, auth fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/signup", h.Auth.Signup)
	a.Post("/login", h.Auth.Login)
	a.Post("/logout", auth, h.Auth.Logout)
	a.Get("/me", auth, h.Auth.Me)

	recruiter := jwt.RequireRole(identity.RoleRecruiter)
	candidate := jwt.RequireRole(identity.RoleCandidate)

	w := v1.Group("/wallet", auth)
	w.Get("/", h.Wallet.Snapshot)
	w.Post("/connect", h.Wallet.Connect)
	w.Post("/disconnect", h.Wallet.Disconnect)
	w.Post("/sign", h.Wallet.Sign)
	w.Post("/send", h.Wallet.Send)
	w.Post("/switch-network", h.Wallet.SwitchNetwork)

	v1.Get("/events", auth, h.Events.Stream)

	j := v1.Group("/jobs", auth)
	j.Get("/", h.Jobs.List)
	j.Post("/", recruiter, h.Jobs.Create)
	j.Get("/:id", h.Jobs.Get)
	j.Patch("/:id/status", recruiter, h.Jobs.UpdateStatus)
	j.Post("/:id/payment", recruiter, h.Jobs.ReleasePayment)
	j.Post("/:id/applications", candidate, h.Jobs.Apply)
	j.Get("/:id/applications", recruiter, h.Jobs.Applications)

	v1.Get("/recruiters/:id/jobs", auth, h.Jobs.RecruiterJobs)
	v1.Get("/recruiter/stats", auth, recruiter, h.Jobs.Stats)

	ap := v1.Group("/applications", auth)
	ap.Get("/shortlisted", recruiter, h.Applications.Shortlisted)
	ap.Get("/:id", h.Applications.Get)
	ap.Post("/:id/shortlist", recruiter, h.Applications.Shortlist)
	ap.Post("/:id/reject", recruiter, h.Applications.Reject)
	ap.Post("/:id/unshortlist", recruiter, h.Applications.Unshortlist)
	ap.Post("/:id/withdraw", candidate, h.Applications.Withdraw)
	ap.Put("/:id/resume", candidate, h.Applications.UpdateResume)

	cg := v1.Group("/candidates/:id", auth)
	cg.Get("/applications", h.Applications.CandidateApplications)
	cg.Get("/resume", h.Applications.CandidateResume)
	cg.Put("/resume", candidate, h.Applications.UpdateProfile)

	v1.Post("/resumes/inspect", auth, h.Resumes.Inspect)

	sk := v1.Group("/skills", auth)
	sk.Get("/mine", h.Skills.Mine)
	sk.Get("/queue", h.Skills.Queue)
	sk.Post("/", h.Skills.Submit)
	sk.Get("/:id", h.Skills.Get)
	sk.Post("/:id/verify", h.Skills.Verify)
	sk.Post("/:id/reject", h.Skills.Reject)
	sk.Post("/:id/certificate", h.Skills.Certificate)

	m := v1.Group("/members/:id", auth)
	m.Get("/endorsements", h.Skills.Endorsements)
	m.Post("/endorsements", h.Skills.Endorse)
	m.Get("/votes", h.Governance.Votes)

	p := v1.Group("/proposals", auth)
	p.Get("/", h.Governance.List)
	p.Post("/", h.Governance.Create)
	p.Get("/:id", h.Governance.Get)
	p.Post("/:id/votes", h.Governance.Vote)

	v1.Get("/leaderboard", auth, h.Governance.Leaderboard)
}
