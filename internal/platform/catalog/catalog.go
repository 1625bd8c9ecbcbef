// Package catalog fetches the medication name list used for prescription
// autocomplete. The catalog is optional: any failure degrades to an empty
// list and never blocks consultation capture.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Fetcher retrieves medication names from a configured URL.
type Fetcher struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewFetcher builds a fetcher with a short timeout; the catalog is
// best-effort and must not delay startup for long.
func NewFetcher(logger zerolog.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &Fetcher{client: client, logger: logger}
}

// Fetch returns the medication names published at url, expected as a JSON
// array of strings. A blank URL, network error, non-2xx status or malformed
// body all yield an empty list.
func (f *Fetcher) Fetch(ctx context.Context, url string) []string {
	if url == "" {
		return []string{}
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("medication catalog fetch failed")
		return []string{}
	}
	if resp.IsError() {
		f.logger.Warn().Int("status", resp.StatusCode()).Str("url", url).
			Msg("medication catalog fetch returned error status")
		return []string{}
	}

	var meds []string
	if err := json.Unmarshal(resp.Body(), &meds); err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("medication catalog response malformed")
		return []string{}
	}
	if meds == nil {
		meds = []string{}
	}
	return meds
}
