package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/alima/supply/internal/pricelists"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPriceListPublished notifies restaurant branches about a new version.
	TaskPriceListPublished = "pricelist:published"
	// TaskTaxCodesRefresh reloads the SAT product code cache.
	TaskTaxCodesRefresh = "taxcodes:refresh"
)

// TaxCodesRefreshPayload records what triggered a refresh.
type TaxCodesRefreshPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewPriceListPublishedTask constructs the notification task for evt.
func NewPriceListPublishedTask(evt pricelists.PublishedEvent) (*asynq.Task, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPriceListPublished, data, asynq.MaxRetry(5)), nil
}

// NewTaxCodesRefreshTask constructs the refresh task.
func NewTaxCodesRefreshTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(TaxCodesRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTaxCodesRefresh, data), nil
}
