package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/search"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

const defaultPageSize = 50

func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	limit = defLimit
	offset = 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// page cuts the limit/offset window requested by c out of items.
func page[T any](c *fiber.Ctx, items []T) presenter.Page[T] {
	limit, offset := parseLimitOffset(c, defaultPageSize)
	p := presenter.Page[T]{Items: []T{}, Total: len(items), Limit: limit, Offset: offset}
	if offset >= len(items) {
		return p
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[offset:end]
	return p
}

func jobFields(j job.Job) []string {
	return append([]string{j.Title, j.Company, j.Description, j.Location}, j.Skills...)
}

func applicationFields(a application.Application) []string {
	return append([]string{a.Candidate.Name, a.Candidate.Title, a.Candidate.Location, a.Job.Title, a.Job.Company}, a.Candidate.Skills...)
}

func skillFields(sk skill.Skill) []string {
	return []string{sk.Name, sk.Experience, sk.Description, sk.Owner.Name}
}

func proposalFields(p governance.Proposal) []string {
	return []string{p.Title, p.Description, p.Creator.Name}
}

// matching applies the free-text "q" query parameter.
func matching[T any](c *fiber.Ctx, items []T, fields func(T) []string) []T {
	return search.Filter(items, search.Parse(c.Query("q")), fields)
}
