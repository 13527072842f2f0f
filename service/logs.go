package service

import (
	"context"
	"net/http"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/crud"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/transport"
)

const logsPath = "api/logs/requests"

// Logs reads the server's request log. It is read-only and requires admin
// auth.
type Logs struct {
	client   *client.Client
	requests *crud.Service[model.LogRequest, struct{}]
}

// NewLogs returns the log service.
func NewLogs(c *client.Client) *Logs {
	return &Logs{client: c, requests: crud.New[model.LogRequest, struct{}](c, logsPath)}
}

// GetList returns one page of request logs.
func (l *Logs) GetList(ctx context.Context, req crud.ListRequest) (*model.ListResult[model.LogRequest], error) {
	return l.requests.GetList(ctx, req)
}

// GetOne returns a single request log.
func (l *Logs) GetOne(ctx context.Context, id string, query []transport.QueryParam) (model.LogRequest, error) {
	return l.requests.GetOne(ctx, id, query)
}

// GetStats returns hourly request counts, optionally narrowed by a filter
// expression.
func (l *Logs) GetStats(ctx context.Context, filter string, query []transport.QueryParam) ([]model.LogStat, error) {
	var params []transport.QueryParam
	if filter != "" {
		params = append(params, transport.QueryParam{Key: "filter", Value: filter})
	}
	params = append(params, query...)

	stats, err := fetch[[]model.LogStat](ctx, l.client, http.MethodGet, logsPath+"/stats", params, nil)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.LogStat{}
	}
	return stats, nil
}
