package bizsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// do sends body as JSON (when non-nil) and decodes the response into out
// when its status is one of expected.
func (c *SDKClient) do(ctx context.Context, method, path string, body, out any, expected ...int) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	_, err = decodeJSON(resp, out, expected...)
	return err
}

// decodeJSON reads the response and decodes it into target when the status
// is expected. It returns the status so callers can tell 201 from 207.
func decodeJSON(resp *http.Response, target any, expected ...int) (int, error) {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if !slices.Contains(expected, resp.StatusCode) {
		return resp.StatusCode, parseErrorResponse(resp, bodyBytes)
	}

	if target == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}
