// Package timecamp is a typed adapter over the TimeCamp third-party
// REST API.
package timecamp

import (
	"net/http"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/httpclient"
)

// Client exposes the TimeCamp operations used by the synchroniser.
// Calls are serial; the underlying HTTP client retries transport
// errors and rate limits.
type Client struct {
	http        *httpclient.Client
	rootGroupID int
}

func NewClient(cfg config.TimeCamp) *Client {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cfg.APIKey)

	return &Client{
		http:        httpclient.New("https://"+cfg.Domain+"/third_party/api", headers),
		rootGroupID: cfg.RootGroupID,
	}
}

// NewClientWithHTTP is used by tests to point the adapter at a local
// server.
func NewClientWithHTTP(http *httpclient.Client, rootGroupID int) *Client {
	return &Client{http: http, rootGroupID: rootGroupID}
}
