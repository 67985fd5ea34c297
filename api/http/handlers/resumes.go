package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
)

type ResumesHandler struct {
	maxBytes int64
	now      func() time.Time
}

func NewResumesHandler() *ResumesHandler {
	return &ResumesHandler{maxBytes: resume.MaxBytes, now: time.Now}
}

// Inspect validates an uploaded resume and returns the metadata to attach
// to applications. The file itself is not stored.
// @Summary Inspect resume upload
// @Description Accepts a PDF or DOCX up to 5MB and returns its metadata.
// @Tags        resumes
// @Accept      multipart/form-data
// @Produce     json
// @Param       file         formData file true  "resume (PDF/DOCX)"
// @Param       lastModified formData int  false "client file mtime, unix ms"
// @Security    BearerAuth
// @Success     200 {object} resume.Meta
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     413 {object} presenter.ErrorResponse
// @Router      /resumes/inspect [post]
func (h *ResumesHandler) Inspect(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf or docx)")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		if errors.Is(err, resume.ErrTooLarge) {
			return presenter.Error(c, http.StatusRequestEntityTooLarge, err.Error())
		}
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	modified := h.now()
	if v := c.FormValue("lastModified"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			modified = time.UnixMilli(ms)
		}
	}
	meta, err := resume.Inspect(fh.Filename, data, modified)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	return presenter.JSON(c, http.StatusOK, meta)
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, resume.ErrTooLarge
	}
	return b, nil
}
