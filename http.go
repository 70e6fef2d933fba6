package mdhtml

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPConvertRequest configures HTTPConvert.
type HTTPConvertRequest struct {
	URL     string
	Client  *http.Client
	Writer  io.Writer
	Options []RenderOption
}

// HTTPConvert fetches Markdown over HTTP(S) and writes HTML.
func HTTPConvert(ctx context.Context, req HTTPConvertRequest) error {
	if req.URL == "" {
		return fmt.Errorf("convert http: URL is required")
	}
	if req.Writer == nil {
		return fmt.Errorf("convert http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return fmt.Errorf("convert http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return fmt.Errorf("convert http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("convert http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("convert http: status %s", resp.Status)
	}
	return Convert(ConvertRequest{
		Reader:  resp.Body,
		Writer:  req.Writer,
		Options: req.Options,
	})
}
