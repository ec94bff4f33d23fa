package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/model"
	"gradebook_backend/internal/util"
	"gradebook_backend/pkg/monitoring"
)

// Client 从学校信息系统拉取成绩与学期
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.FeedConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchGrades(ctx context.Context, account model.Account) (resp *model.GradesResponse, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		monitoring.FeedFetchDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if account.AccountID == "" {
		return nil, util.ErrAccountMissing
	}

	endpoint := fmt.Sprintf("%s/students/%s/grades", c.baseURL, url.PathEscape(account.AccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Token", account.Session)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFeedUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, util.ErrFeedRejected
	case res.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrFeedUnavailable, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out model.GradesResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", util.ErrFeedUnavailable, err)
	}
	return &out, nil
}
