package activitypub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

// Client performs the federation network calls. Fetch failures and
// delivery failures are terminal for the issuing request; nothing retries.
type Client interface {
	Fetch(ctx context.Context, uri string) (RemoteObject, error)
	Deliver(ctx context.Context, inbox string, body []byte, headers http.Header) error
}

type httpClient struct {
	client *http.Client
}

// NewClient returns a new Client.
func NewClient() Client {
	return &httpClient{
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch GETs a remote actor or object document.
func (c *httpClient) Fetch(ctx context.Context, uri string) (RemoteObject, error) {
	ctx, span := tracer.Start(ctx, "Client.Fetch")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		span.RecordError(err)
		return RemoteObject{}, errors.Wrap(err, "failed to build fetch request")
	}
	req.Header.Set("Accept", "application/activity+json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return RemoteObject{}, errors.Wrap(err, "remote unavailable")
	}
	defer resp.Body.Close()

	slog.InfoContext(ctx, fmt.Sprintf("GET %s %d", uri, resp.StatusCode),
		slog.String("module", "activitypub"),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = errors.Errorf("remote returned %s", resp.Status)
		span.RecordError(err)
		return RemoteObject{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return RemoteObject{}, errors.Wrap(err, "failed to read remote body")
	}

	var object RemoteObject
	err = json.Unmarshal(body, &object)
	if err != nil {
		span.RecordError(err)
		return RemoteObject{}, errors.Wrap(err, "remote returned non-JSON body")
	}

	return object, nil
}

// Deliver POSTs the exact signed bytes to a destination inbox. The remote
// response is logged but not interpreted.
func (c *httpClient) Deliver(ctx context.Context, inbox string, body []byte, headers http.Header) error {
	ctx, span := tracer.Start(ctx, "Client.Deliver")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, "POST", inbox, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to build delivery request")
	}
	req.Header = headers.Clone()
	if host := headers.Get("Host"); host != "" {
		req.Host = host
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to deliver activity")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	slog.InfoContext(ctx, fmt.Sprintf("POST %s %d", inbox, resp.StatusCode),
		slog.String("module", "activitypub"),
	)

	return nil
}
