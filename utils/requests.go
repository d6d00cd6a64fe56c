package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Error for a response with a non-200 status.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request returned status %d", e.Status)
	}
	return fmt.Sprintf("request returned status %d: %s", e.Status, e.Body)
}

// Get JSON from a path relative to the client's base URL. Query values are sent unencoded to resty, which encodes them.
func GetJson[T any](ctx context.Context, client *resty.Client, path string, headers map[string]string, query map[string]string) (*T, error) {
	// Build request
	request := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParams(query)

	// Do request
	return interpretResponse[T](request.Get(path))
}

func interpretResponse[T any](response *resty.Response, err error) (*T, error) {
	// Check statuses
	if err != nil {
		return nil, fmt.Errorf("error during request: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, &HTTPStatusError{Status: response.StatusCode(), Body: response.String()}
	}
	// Cast to type
	var out T
	err = json.Unmarshal(response.Body(), &out)
	if err != nil {
		return nil, fmt.Errorf("error during decoding of response to %v %v: %w", response.Request.Method, response.Request.URL, err)
	}
	return &out, nil
}
