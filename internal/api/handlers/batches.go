// Package handlers provides HTTP request handlers for the guestbook daemon API.
//
// This file implements the batch endpoints. Submitting a batch only validates
// and queues it; the dispatcher runs it in the background and clients poll
// the batch record until it reaches a terminal status.
//
// BATCH ENDPOINTS:
//   - POST /api/v1/batches: Validate and queue a batch (202 with its ID)
//   - GET /api/v1/batches: List recent batches, newest first
//   - GET /api/v1/batches/:id: Full record including the report
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"

	"github.com/concave-dev/guestbook/internal/api/dispatch"
	"github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/names"
	"github.com/concave-dev/guestbook/internal/plan"
	"github.com/concave-dev/guestbook/internal/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// BatchQueue accepts batches for background execution.
// Implemented by dispatch.Dispatcher.
type BatchQueue interface {
	Enqueue(job dispatch.Job) (*history.Record, error)
}

// BatchHistory reads stored batch records.
// Implemented by history.Store.
type BatchHistory interface {
	Get(id string) (*history.Record, error)
	List(limit int) ([]*history.Record, error)
}

// BatchRequest is the payload for POST /api/v1/batches. Timing fields are
// optional and fall back to the daemon defaults; zero pacing is allowed.
type BatchRequest struct {
	Name            string       `json:"name"`
	PacingMs        *int64       `json:"pacing_ms,omitempty"`
	MaxAttempts     *int         `json:"max_attempts,omitempty"`
	RetryIntervalMs *int64       `json:"retry_interval_ms,omitempty"`
	Groups          []plan.Group `json:"groups" binding:"required,min=1"`
}

// ToPlan converts the request into a plan, applying defaults.
func (r *BatchRequest) ToPlan() *plan.Plan {
	p := &plan.Plan{
		Name:          r.Name,
		Pacing:        config.DefaultPacingDelay,
		MaxAttempts:   config.DefaultMaxAttempts,
		RetryInterval: config.DefaultRetryInterval,
		Groups:        r.Groups,
	}
	if r.PacingMs != nil {
		p.Pacing = time.Duration(*r.PacingMs) * time.Millisecond
	}
	if r.MaxAttempts != nil {
		p.MaxAttempts = *r.MaxAttempts
	}
	if r.RetryIntervalMs != nil {
		p.RetryInterval = time.Duration(*r.RetryIntervalMs) * time.Millisecond
	}
	return p
}

// BatchSubmitResponse is returned when a batch is accepted.
type BatchSubmitResponse struct {
	BatchID   string         `json:"batch_id"`
	Name      string         `json:"name"`
	Status    history.Status `json:"status"`
	Requested int            `json:"requested"`
	Message   string         `json:"message"`
}

// BatchSummary is one row of the batch listing. It leaves out per-operation
// outcomes; fetch the batch by ID for those.
type BatchSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      history.Status `json:"status"`
	Requested   int            `json:"requested"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	GasUsed     uint64         `json:"gas_used"`
	SubmittedAt time.Time      `json:"submitted_at"`
	FinishedAt  time.Time      `json:"finished_at,omitempty"`
}

// BatchListResponse is the payload for GET /api/v1/batches.
type BatchListResponse struct {
	Batches []BatchSummary `json:"batches"`
	Count   int            `json:"count"`
}

func summarize(rec *history.Record) BatchSummary {
	s := BatchSummary{
		ID:          rec.ID,
		Name:        rec.Name,
		Status:      rec.Status,
		Requested:   rec.Requested,
		SubmittedAt: rec.SubmittedAt,
		FinishedAt:  rec.FinishedAt,
	}
	if rec.Report != nil {
		s.Succeeded = rec.Report.Succeeded
		s.Failed = rec.Report.Failed
		s.GasUsed = rec.Report.TotalGasUsed
	}
	return s
}

// SubmitBatch handles HTTP requests for queueing a new batch.
//
// POST /api/v1/batches
//
// Every operation is validated before anything is queued, and all problems
// are reported together so a client can fix a large batch in one round trip.
func SubmitBatch(queue BatchQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logging.Warn("Batch submission: Invalid request body: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}

		p := req.ToPlan()
		if err := p.Validate(); err != nil {
			logging.Warn("Batch submission: Rejected invalid batch: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Invalid batch",
				"details":  err.Error(),
				"problems": problems(err),
			})
			return
		}

		groups, err := p.OperationGroups()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid batch",
				"details": err.Error(),
			})
			return
		}

		batchID, err := utils.GenerateID()
		if err != nil {
			logging.Warn("Batch submission: Failed to generate batch ID: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to generate batch ID",
				"details": "Internal ID generation error",
			})
			return
		}

		name := req.Name
		if name == "" {
			name = names.Generate()
		}

		rec, err := queue.Enqueue(dispatch.Job{
			Record: &history.Record{ID: batchID, Name: name},
			Groups: groups,
			Config: p.EngineConfig(),
		})
		if err != nil {
			var full *dispatch.QueueFullError
			switch {
			case errors.As(err, &full):
				logging.Warn("Batch submission: %v", err)
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error":   "Batch queue is full",
					"details": err.Error(),
				})
			case errors.Is(err, dispatch.ErrStopped):
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error":   "Daemon is shutting down",
					"details": err.Error(),
				})
			default:
				logging.Error("Batch submission: Failed to queue batch: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Failed to queue batch",
					"details": err.Error(),
				})
			}
			return
		}

		c.Header("Location", "/api/v1/batches/"+rec.ID)
		c.JSON(http.StatusAccepted, BatchSubmitResponse{
			BatchID:   rec.ID,
			Name:      rec.Name,
			Status:    rec.Status,
			Requested: rec.Requested,
			Message:   "Batch queued for submission",
		})
	}
}

// ListBatches handles HTTP requests for listing recent batches.
//
// GET /api/v1/batches?limit=N
func ListBatches(store BatchHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultListLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxListLimit {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid limit",
					"details": "limit must be an integer between 1 and " + strconv.Itoa(maxListLimit),
				})
				return
			}
			limit = n
		}

		records, err := store.List(limit)
		if err != nil {
			logging.Error("Batch listing: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to read batch history",
				"details": err.Error(),
			})
			return
		}

		batches := make([]BatchSummary, 0, len(records))
		for _, rec := range records {
			batches = append(batches, summarize(rec))
		}

		c.JSON(http.StatusOK, BatchListResponse{
			Batches: batches,
			Count:   len(batches),
		})
	}
}

// GetBatch handles HTTP requests for a single batch record.
//
// GET /api/v1/batches/:id
func GetBatch(store BatchHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		batchID := c.Param("id")

		rec, err := store.Get(batchID)
		if errors.Is(err, history.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Batch not found",
				"details": "No batch with ID " + batchID,
			})
			return
		}
		if err != nil {
			logging.Error("Batch lookup: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to read batch history",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, rec)
	}
}

// problems flattens an aggregated validation error into one entry per problem.
func problems(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
