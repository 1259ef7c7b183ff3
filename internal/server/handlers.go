package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/extract"
	"github.com/spigell/jobstir/internal/matching"
)

const resumeFormField = "resume"

type batchRequest struct {
	Requests []evaluator.Request `json:"requests"`
}

type batchItem struct {
	Index  int               `json:"index"`
	Result *evaluator.Result `json:"result,omitempty"`
	Error  *ErrorBody        `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Failed  int         `json:"failed"`
}

type recommendRequest struct {
	ResumeText string `json:"resume_text"`
	Limit      int    `json:"limit"`
}

type recommendResponse struct {
	Recommendations []matching.Recommendation `json:"job_recommendations"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) evaluate(c *gin.Context) {
	var req evaluator.Request
	if !bindJSON(c, &req, "request body must be a JSON evaluation request") {
		return
	}

	res, err := s.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// evaluateUpload accepts a multipart form with a resume file and the job
// description as a form field.
func (s *Server) evaluateUpload(c *gin.Context) {
	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("resume file exceeds %d bytes", s.cfg.MaxUploadBytes), nil)
			return
		}
		respondError(c, http.StatusBadRequest, "missing_file", fmt.Sprintf("multipart field %q is required", resumeFormField), nil)
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Sprintf("resume file exceeds %d bytes", s.cfg.MaxUploadBytes), nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable_file", "resume file cannot be opened", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable_file", "resume file cannot be read", nil)
		return
	}

	text, err := extract.FromBytes(c.Request.Context(), data, fh.Filename)
	if err != nil {
		status, body := classify(err)
		if status == http.StatusInternalServerError {
			status, body = http.StatusUnprocessableEntity, ErrorBody{Code: "unreadable_resume", Message: err.Error()}
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
		return
	}

	res, err := s.service.Evaluate(c.Request.Context(), evaluator.Request{
		ResumeText:     text,
		JobDescription: c.PostForm("job_description"),
		Tier:           evaluator.Tier(c.PostForm("tier")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) evaluateBatch(c *gin.Context) {
	var req batchRequest
	if !bindJSON(c, &req, "request body must be a JSON batch request") {
		return
	}

	switch n := len(req.Requests); {
	case n == 0:
		respondError(c, http.StatusBadRequest, "validation_error", "requests must not be empty", nil)
		return
	case n > s.cfg.MaxBatch:
		respondError(c, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("a batch holds at most %d requests", s.cfg.MaxBatch), nil)
		return
	}

	outcomes := s.service.EvaluateBatch(c.Request.Context(), req.Requests)

	resp := batchResponse{Results: make([]batchItem, 0, len(outcomes))}
	for _, o := range outcomes {
		item := batchItem{Index: o.Index, Result: o.Result}
		if o.Err != nil {
			_, body := classify(o.Err)
			item.Error = &body
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}

	if resp.Failed > 0 {
		s.logger.Debug("batch finished with failures", zap.Int("failed", resp.Failed), zap.Int("total", len(outcomes)))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) recommend(c *gin.Context) {
	var req recommendRequest
	if !bindJSON(c, &req, "request body must be a JSON recommendation request") {
		return
	}

	recs, err := s.service.Recommend(c.Request.Context(), req.ResumeText, req.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendResponse{Recommendations: recs})
}
