// Package client provides the guestbookd API client for the guestctl CLI.
//
// The GuestbookAPIClient wraps the Resty HTTP client with guestbook specific
// request and response handling: timeouts, retries on connection errors,
// structured debug logging and error messages that carry the daemon's
// "error" and "details" fields.
//
// SUPPORTED OPERATIONS:
//   - Health: Daemon version, signer, chain and queue state
//   - Batches: Submit, fetch, list and wait for completion
//   - Contract: Guestbook stats and newest messages as read by the daemon
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/plan"
	"github.com/concave-dev/guestbook/internal/resources"
)

// ErrorResponse is the error body returned by guestbookd.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details"`
	Problems []string `json:"problems,omitempty"`
}

// Health mirrors GET /api/v1/health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Sender    string    `json:"sender,omitempty"`
	ChainID   string    `json:"chain_id,omitempty"`
	QueueSize int       `json:"queue_size"`
	QueueCap  int       `json:"queue_cap"`

	Resources *resources.Snapshot `json:"resources,omitempty"`
}

// BatchRequest is the body of POST /api/v1/batches.
type BatchRequest struct {
	Name            string       `json:"name,omitempty"`
	PacingMs        *int64       `json:"pacing_ms,omitempty"`
	MaxAttempts     *int         `json:"max_attempts,omitempty"`
	RetryIntervalMs *int64       `json:"retry_interval_ms,omitempty"`
	Groups          []plan.Group `json:"groups"`
}

// BatchSubmitResponse is returned when the daemon accepts a batch.
type BatchSubmitResponse struct {
	BatchID   string         `json:"batch_id"`
	Name      string         `json:"name"`
	Status    history.Status `json:"status"`
	Requested int            `json:"requested"`
	Message   string         `json:"message"`
}

// BatchSummary is one row of GET /api/v1/batches.
type BatchSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      history.Status `json:"status"`
	Requested   int            `json:"requested"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	GasUsed     uint64         `json:"gas_used"`
	SubmittedAt time.Time      `json:"submitted_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// BatchListResponse mirrors GET /api/v1/batches.
type BatchListResponse struct {
	Batches []BatchSummary `json:"batches"`
	Count   int            `json:"count"`
}

// MessagesResponse mirrors GET /api/v1/contract/messages.
type MessagesResponse struct {
	Messages []chain.Message `json:"messages"`
	Count    int             `json:"count"`
}

// GuestbookAPIClient talks to a guestbookd instance.
type GuestbookAPIClient struct {
	client       *resty.Client
	baseURL      string
	pollInterval time.Duration
}

// NewGuestbookAPIClient creates a client for the daemon at apiAddr with a
// per-request timeout in seconds. Only connection errors on reads are
// retried. Batch submissions and HTTP error statuses are returned to the
// caller as they are.
func NewGuestbookAPIClient(apiAddr string, timeout int) *GuestbookAPIClient {
	client := resty.New()

	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client.SetLogger(utils.RestyLogger{})

	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("guestctl/%s", config.Version))

	client.
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// A timed out POST may still have queued a batch
			if r != nil && r.Request != nil && r.Request.Method == http.MethodPost {
				return false
			}
			// Only retry on connection errors, not HTTP errors
			return err != nil
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &GuestbookAPIClient{
		client:       client,
		baseURL:      baseURL,
		pollInterval: time.Second,
	}
}

// SetPollInterval changes how often WaitForBatch polls.
func (api *GuestbookAPIClient) SetPollInterval(d time.Duration) {
	api.pollInterval = d
}

// GetHealth fetches daemon health.
func (api *GuestbookAPIClient) GetHealth() (*Health, error) {
	var health Health

	resp, err := api.client.R().
		SetResult(&health).
		Get("/health")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	return &health, nil
}

// SubmitBatch queues a batch on the daemon. Validation failures come back as
// a single error listing every problem.
func (api *GuestbookAPIClient) SubmitBatch(req *BatchRequest) (*BatchSubmitResponse, error) {
	var response BatchSubmitResponse
	var failure ErrorResponse

	resp, err := api.client.R().
		SetBody(req).
		SetResult(&response).
		SetError(&failure).
		Post("/batches")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	switch resp.StatusCode() {
	case 202:
		return &response, nil
	case 400:
		if len(failure.Problems) > 0 {
			return nil, fmt.Errorf("invalid batch: %d problem(s): %v", len(failure.Problems), failure.Problems)
		}
		return nil, fmt.Errorf("invalid batch: %s", failure.Details)
	case 429:
		return nil, fmt.Errorf("daemon queue is full, try again later: %s", failure.Details)
	case 503:
		return nil, fmt.Errorf("daemon is shutting down")
	default:
		return nil, statusError(resp)
	}
}

// GetBatch fetches a batch record including its report.
func (api *GuestbookAPIClient) GetBatch(batchID string) (*history.Record, error) {
	var record history.Record

	resp, err := api.client.R().
		SetResult(&record).
		SetPathParam("id", batchID).
		Get("/batches/{id}")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("batch '%s' not found", batchID)
	}

	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	return &record, nil
}

// ListBatches fetches up to limit batch summaries, newest first.
func (api *GuestbookAPIClient) ListBatches(limit int) ([]BatchSummary, error) {
	var response BatchListResponse

	resp, err := api.client.R().
		SetResult(&response).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		Get("/batches")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	return response.Batches, nil
}

// errBatchPending keeps WaitForBatch polling.
var errBatchPending = errors.New("batch not finished")

// WaitForBatch polls a batch until it reaches a terminal status or ctx ends.
// onPoll, when set, sees every intermediate record. On cancellation the last
// record seen is returned with the context error.
func (api *GuestbookAPIClient) WaitForBatch(ctx context.Context, batchID string, onPoll func(*history.Record)) (*history.Record, error) {
	backoff, err := retry.NewConstant(api.pollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval %v: %w", api.pollInterval, err)
	}

	var last *history.Record
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		record, err := api.GetBatch(batchID)
		if err != nil {
			return err
		}
		last = record
		if record.Status.Finished() {
			return nil
		}
		if onPoll != nil {
			onPoll(record)
		}
		return retry.RetryableError(errBatchPending)
	})
	switch {
	case err == nil:
		return last, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return last, ctx.Err()
	default:
		return nil, err
	}
}

// GetContractStats fetches guestbook stats as read by the daemon.
func (api *GuestbookAPIClient) GetContractStats() (*chain.Stats, error) {
	var stats chain.Stats

	resp, err := api.client.R().
		SetResult(&stats).
		Get("/contract/stats")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	return &stats, nil
}

// GetRecentMessages fetches the newest guestbook messages, newest first.
func (api *GuestbookAPIClient) GetRecentMessages(last int) ([]chain.Message, error) {
	var response MessagesResponse

	resp, err := api.client.R().
		SetResult(&response).
		SetQueryParam("last", fmt.Sprintf("%d", last)).
		Get("/contract/messages")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, statusError(resp)
	}

	return response.Messages, nil
}

// CreateAPIClient creates a client from the global CLI configuration.
func CreateAPIClient() *GuestbookAPIClient {
	return NewGuestbookAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

func statusError(resp *resty.Response) error {
	return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
}
