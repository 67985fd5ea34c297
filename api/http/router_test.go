package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/mk-2871/Proof-of-Talent/api/http"
	"github.com/mk-2871/Proof-of-Talent/api/http/handlers"
	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/health"
	"github.com/mk-2871/Proof-of-Talent/pkg/health/checkers"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
	"github.com/mk-2871/Proof-of-Talent/pkg/security/jwt"
	"github.com/mk-2871/Proof-of-Talent/pkg/seed"
	"github.com/mk-2871/Proof-of-Talent/pkg/session"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet/wallettest"
)

const (
	secret  = "router-secret"
	issuer  = "pot-test"
	account = "0xAAAA000000000000000000000000000000000001"
)

type env struct {
	app    *fiber.App
	wallet *wallettest.Wallet
	hub    *notify.Hub
	tokens *jwt.Generator
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemory()
	d, err := seed.Load()
	require.NoError(t, err)

	jobs, err := job.NewStore(ctx, store, d.Jobs)
	require.NoError(t, err)
	apps, err := application.NewStore(ctx, store, d.Applications)
	require.NoError(t, err)
	skills, err := skill.NewStore(ctx, store, d.Skills, d.Endorsements)
	require.NoError(t, err)
	proposals, err := governance.NewStore(ctx, store, d.Proposals)
	require.NoError(t, err)

	w := wallettest.New(wallet.Sepolia.ChainID, account)
	hub := notify.NewHub()
	mgr := session.NewManager(w, store, session.WithNotifier(hub), session.WithTimeout(time.Second))
	t.Cleanup(mgr.Close)

	gen := jwt.NewGenerator(secret, issuer, time.Hour)
	ids := identity.NewService(store, gen)
	uc := marketplace.NewService(ids,
		marketplace.Stores{Jobs: jobs, Applications: apps, Skills: skills, Proposals: proposals}, mgr,
		marketplace.WithNotifier(hub))

	app := fiber.New()
	apihttp.Register(app, apihttp.Handlers{
		Health:       handlers.NewHealthHandler(health.NewService(checkers.NewStorageChecker("memory", store), checkers.NewWalletChecker(w))),
		Auth:         handlers.NewAuthHandler(uc, ids),
		Wallet:       handlers.NewWalletHandler(mgr),
		Events:       handlers.NewEventsHandler(hub),
		Jobs:         handlers.NewJobsHandler(uc, jobs, apps),
		Applications: handlers.NewApplicationsHandler(uc, apps),
		Resumes:      handlers.NewResumesHandler(),
		Skills:       handlers.NewSkillsHandler(uc, skills),
		Governance:   handlers.NewGovernanceHandler(uc, proposals),
	}, jwt.NewAuthMiddleware(secret, issuer))
	return env{app: app, wallet: w, hub: hub, tokens: gen}
}

func (e env) token(t *testing.T, id identity.Identity) string {
	t.Helper()
	tok, err := e.tokens.Generate(context.Background(), id)
	require.NoError(t, err)
	return tok
}

func (e env) candidate(t *testing.T) string {
	return e.token(t, identity.Identity{ID: "user123", Name: "Alex Johnson", Email: "alex@example.com", Role: identity.RoleCandidate})
}

func (e env) recruiter(t *testing.T, id string) string {
	return e.token(t, identity.Identity{ID: id, Name: "Sarah Williams", Email: "sarah@example.com", Role: identity.RoleRecruiter})
}

func (e env) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestHealthIsPublic(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := e.do(t, http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, health.Report{Ready: true, Checks: []health.CheckResult{
		{Name: "storage:memory", OK: true},
		{Name: "wallet", OK: true, Advisory: true},
	}}, decode[health.Report](t, body))
}

func TestLoginThenMe(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "someone@example.com", "password": "secret", "role": "recruiter",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decode[identity.Result](t, body)
	assert.Equal(t, identity.DemoID, res.Identity.ID)
	assert.Equal(t, identity.DemoRecruiterName, res.Identity.Name)

	resp, body = e.do(t, http.MethodGet, "/api/v1/auth/me", res.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, res.Identity, decode[identity.Identity](t, body))

	resp, _ = e.do(t, http.MethodPost, "/api/v1/auth/logout", res.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", identity.SignupInput{
		Name: "Jane", Email: "jane@example.com", Password: "a", ConfirmPassword: "b", Role: identity.RoleCandidate,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "passwords do not match", decode[presenter.ErrorResponse](t, body).Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/v1/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListJobsPaginates(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/v1/jobs?limit=2", e.candidate(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[presenter.Page[job.Job]](t, body)
	assert.Equal(t, 3, p.Total)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "job1", p.Items[0].ID)

	resp, body = e.do(t, http.MethodGet, "/api/v1/jobs?q=solidity&offset=1", e.candidate(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p = decode[presenter.Page[job.Job]](t, body)
	assert.Equal(t, 2, p.Total)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "job3", p.Items[0].ID)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/jobs?status=bogus", e.candidate(t), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/jobs/nope", e.candidate(t), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostJobNeedsRecruiter(t *testing.T) {
	e := newEnv(t)
	in := map[string]any{
		"title": "Solidity Dev", "company": "Acme", "description": "Build things",
		"budget": "1 ETH", "skillsText": "Solidity, Hardhat",
	}
	resp, body := e.do(t, http.MethodPost, "/api/v1/jobs", e.candidate(t), in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "requires role recruiter")

	resp, body = e.do(t, http.MethodPost, "/api/v1/jobs", e.recruiter(t, "recruiter9"), in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	j := decode[job.Job](t, body)
	assert.Equal(t, "recruiter9", j.RecruiterID)
	assert.Equal(t, []string{"Solidity", "Hardhat"}, j.Skills)
	assert.Equal(t, job.StatusActive, j.Status)

	resp, body = e.do(t, http.MethodPatch, "/api/v1/jobs/"+j.ID+"/status", e.recruiter(t, "recruiter9"), map[string]string{"status": "closed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodGet, "/api/v1/jobs", e.candidate(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[presenter.Page[job.Job]](t, body).Total)

	resp, _ = e.do(t, http.MethodPatch, "/api/v1/jobs/job1/status", e.recruiter(t, "recruiter9"), map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPatch, "/api/v1/jobs/"+j.ID+"/status", e.recruiter(t, "recruiter9"), map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWalletLifecycle(t *testing.T) {
	e := newEnv(t)
	tok := e.candidate(t)

	resp, body := e.do(t, http.MethodPost, "/api/v1/wallet/sign", tok, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_SIGNER_AVAILABLE", decode[presenter.ErrorResponse](t, body).Code)

	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/connect", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	snap := decode[session.Snapshot](t, body)
	assert.True(t, snap.IsConnected)
	assert.Equal(t, strings.ToLower(account), snap.Address)
	assert.False(t, snap.WrongNetwork)

	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/sign", tok, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "0xsig(hi)", decode[map[string]string](t, body)["signature"])

	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/send", tok, map[string]string{"to": "not-an-address", "amount": "0.1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/send", tok, map[string]string{
		"to": "0x1234567890123456789012345678901234567890", "amount": "0.1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "0xtxhash", decode[session.TxResult](t, body).Hash)

	e.wallet.SignErr = wallettest.Rejected()
	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/sign", tok, map[string]string{"message": "again"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "USER_REJECTED", decode[presenter.ErrorResponse](t, body).Code)

	resp, body = e.do(t, http.MethodPost, "/api/v1/wallet/disconnect", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session.Snapshot{State: session.Disconnected}, decode[session.Snapshot](t, body))

	resp, body = e.do(t, http.MethodGet, "/api/v1/wallet", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"chainId":11155111`)
}

func TestApplyAndReview(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)
	cv := resume.Meta{Name: "alex.pdf", Size: 2048, Type: resume.MimePDF, LastModified: 1700000000000}

	resp, body := e.do(t, http.MethodPost, "/api/v1/jobs/job2/applications", cand, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/v1/jobs/job2/applications", cand, map[string]any{
		"application": "I build dapps", "resume": cv,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	a := decode[application.Application](t, body)
	assert.Equal(t, application.StatusPending, a.Status)
	assert.Equal(t, "Frontend Developer", a.Job.Title)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/jobs/job2/applications", e.recruiter(t, "recruiter1"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/v1/jobs/job2/applications", e.recruiter(t, "recruiter2"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[presenter.Page[application.Application]](t, body).Total)

	resp, body = e.do(t, http.MethodPost, "/api/v1/applications/"+a.ID+"/shortlist", e.recruiter(t, "recruiter2"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, application.StatusShortlisted, decode[application.Application](t, body).Status)

	resp, body = e.do(t, http.MethodGet, "/api/v1/applications/shortlisted", e.recruiter(t, "recruiter2"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[presenter.Page[application.Application]](t, body).Total)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/applications/app3/reject", e.recruiter(t, "recruiter1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = e.do(t, http.MethodPost, "/api/v1/applications/app3/shortlist", e.recruiter(t, "recruiter1"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[presenter.ErrorResponse](t, body).Code)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/applications/missing/reject", e.recruiter(t, "recruiter1"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// the first application on file (seed app1) carries no resume
	resp, _ = e.do(t, http.MethodGet, "/api/v1/candidates/user123/resume", cand, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodPut, "/api/v1/candidates/user123/resume", cand, marketplace.ProfileInput{Name: "Alex", Resume: &cv})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 2, decode[marketplace.Profile](t, body).Updated)

	resp, body = e.do(t, http.MethodGet, "/api/v1/candidates/user123/resume", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cv, decode[resume.Meta](t, body))

	resp, body = e.do(t, http.MethodGet, "/api/v1/candidates/user123/applications", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[presenter.Page[application.Application]](t, body).Total)

	resp, body = e.do(t, http.MethodPost, "/api/v1/applications/app1/withdraw", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, _ = e.do(t, http.MethodPost, "/api/v1/applications/app2/withdraw", cand, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReleasePayment(t *testing.T) {
	e := newEnv(t)
	rec := e.recruiter(t, "recruiter1")

	resp, _ := e.do(t, http.MethodPost, "/api/v1/jobs/job1/payment", rec, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/applications/app1/shortlist", rec, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/v1/jobs/job1/payment", rec, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p := decode[marketplace.Payment](t, body)
	assert.False(t, p.Sent)
	assert.NotEmpty(t, p.Error)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/wallet/connect", rec, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/v1/jobs/job1/payment", rec, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p = decode[marketplace.Payment](t, body)
	assert.Equal(t, marketplace.Payment{
		JobID: "job1", ApplicationID: "app1", CandidateName: "Alex Johnson",
		Amount: "0.5", Recipient: marketplace.DefaultPayoutAddress, TxHash: "0xtxhash", Sent: true,
	}, p)

	resp, body = e.do(t, http.MethodGet, "/api/v1/recruiter/stats", rec, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, marketplace.Stats{ActiveJobs: 2, TotalJobs: 2, TotalApplications: 2, Shortlisted: 1, Pending: 1},
		decode[marketplace.Stats](t, body))
}

func TestUpdateProfileFansOutResume(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)
	cv := resume.Meta{Name: "new.docx", Size: 10, Type: resume.MimeDOCX, LastModified: 1}

	resp, _ := e.do(t, http.MethodPut, "/api/v1/candidates/user124/resume", cand, marketplace.ProfileInput{Resume: &cv})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := e.do(t, http.MethodPut, "/api/v1/candidates/user123/resume", cand, marketplace.ProfileInput{Name: "Alex", Resume: &cv})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p := decode[marketplace.Profile](t, body)
	assert.Equal(t, 1, p.Updated)
	assert.Equal(t, &cv, p.Resume)

	resp, body = e.do(t, http.MethodGet, "/api/v1/applications/app1", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, &cv, decode[application.Application](t, body).Resume)
}

func upload(t *testing.T, e env, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("lastModified", "1700000000000"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/inspect", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.candidate(t))
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func docx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<w:document/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestInspectResume(t *testing.T) {
	e := newEnv(t)
	content := docx(t)

	resp, body := upload(t, e, "cv.docx", content)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, resume.Meta{
		Name: "cv.docx", Size: int64(len(content)), Type: resume.MimeDOCX, LastModified: 1700000000000,
	}, decode[resume.Meta](t, body))

	resp, _ = upload(t, e, "cv.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsStream(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+e.candidate(t))

	go func() {
		for e.hub.Subscribers() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		e.hub.Notify(context.Background(), notify.Success("Wallet Connected", "Connected to 0xaaaa...0001"))
		e.hub.Close()
	}()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "event: notification\n")
	assert.Contains(t, string(body), `"title":"Wallet Connected"`)
}

func TestSkillVerificationFlow(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)
	rev := e.recruiter(t, "recruiter1")
	in := marketplace.SkillInput{SkillName: "Go", Experience: "3 years", ProofLink: "https://github.com/alexj/go", Description: "Relayers"}

	resp, body := e.do(t, http.MethodPost, "/api/v1/skills", cand, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "submission needs a connected wallet")
	assert.Equal(t, apperr.CodeNoSignerAvailable, decode[presenter.ErrorResponse](t, body).Code)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/wallet/connect", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/v1/skills", cand, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sk := decode[skill.Skill](t, body)
	assert.Equal(t, skill.StatusPending, sk.Status)

	resp, body = e.do(t, http.MethodGet, "/api/v1/skills/queue", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, q := range decode[presenter.Page[skill.Skill]](t, body).Items {
		assert.NotEqual(t, "user123", q.Owner.ID, "own claims stay out of the queue")
	}

	resp, body = e.do(t, http.MethodGet, "/api/v1/skills/queue", rev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6, decode[presenter.Page[skill.Skill]](t, body).Total)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/skills/"+sk.ID+"/verify", cand, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/v1/skills/"+sk.ID+"/verify", rev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, skill.StatusVerified, decode[skill.Skill](t, body).Status)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/skills/"+sk.ID+"/reject", rev, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/v1/skills/"+sk.ID+"/certificate", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, decode[skill.Skill](t, body).Certified)

	resp, body = e.do(t, http.MethodGet, "/api/v1/skills/mine", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, decode[presenter.Page[skill.Skill]](t, body).Total)

	last, ok := e.wallet.LastCall("personal_sign")
	require.True(t, ok)
	assert.Equal(t, "Mint certificate for skill ID: "+sk.ID, last.Args[1])
}

func TestEndorseMember(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)
	resp, _ := e.do(t, http.MethodPost, "/api/v1/wallet/connect", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/v1/members/user125/endorsements", cand, map[string]string{"skill": "React", "reason": "Shipped our dashboard"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "Michael Chen", decode[skill.Endorsement](t, body).To.Name)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/members/user123/endorsements", cand, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/v1/members/user125/endorsements", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[presenter.Page[skill.Endorsement]](t, body).Total)
}

func TestProposalVoting(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)
	resp, _ := e.do(t, http.MethodPost, "/api/v1/wallet/connect", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.do(t, http.MethodGet, "/api/v1/proposals?q=rust", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[presenter.Page[governance.Proposal]](t, body)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "prop1", list.Items[0].ID)

	resp, body = e.do(t, http.MethodPost, "/api/v1/proposals/prop1/votes", cand, map[string]string{"choice": "no"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, governance.Tally{Yes: 77, No: 23, Total: 100}, decode[governance.Proposal](t, body).Votes)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/proposals/prop1/votes", cand, map[string]string{"choice": "abstain"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/v1/proposals", cand, marketplace.ProposalInput{Title: "Fund audits", Description: "From the treasury", Deadline: "Jun 1, 2024"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[governance.Proposal](t, body)

	resp, body = e.do(t, http.MethodGet, "/api/v1/proposals/"+created.ID, cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Fund audits", decode[governance.Proposal](t, body).Title)

	resp, body = e.do(t, http.MethodGet, "/api/v1/members/user123/votes", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	votes := decode[presenter.Page[governance.CastVote]](t, body)
	require.Equal(t, 3, votes.Total)
	assert.Equal(t, governance.No, votes.Items[0].Choice)
}

func TestLeaderboard(t *testing.T) {
	e := newEnv(t)
	cand := e.candidate(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/leaderboard?by=dao", cand, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	standings := decode[[]marketplace.Standing](t, body)
	require.NotEmpty(t, standings)
	assert.Equal(t, marketplace.Standing{Rank: 1, Member: standings[0].Member, Score: 15}, standings[0])
	assert.Equal(t, "user123", standings[0].Member.ID)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/leaderboard?by=karma", cand, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
