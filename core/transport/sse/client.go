// Package sse implements the transport contract over server-sent events:
// one POST per turn, with the response body streamed as `data:` lines until
// the server closes it.
package sse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/korvuslabs/relay-core/core/protocol"
	"github.com/korvuslabs/relay-core/core/transport"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const dataPrefix = "data:"

// scanBufferSize bounds a single SSE line; artifact frames can carry whole
// answers, so the default scanner limit is too small.
const scanBufferSize = 1 << 20

type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates an SSE transport targeting the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	client := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Open sends the turn request and hands back the response stream. A non-2xx
// handshake is an error; the stream is never partially opened.
func (c *Client) Open(ctx context.Context, req protocol.Request) (transport.Stream, error) {
	ctx, span := tracer.Start(ctx, "open event stream")
	defer span.End()
	span.SetAttributes(attribute.String("request.endpoint", c.endpoint))
	span.SetAttributes(attribute.String("request.method", req.Method))

	body, err := json.Marshal(req)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		cancel()
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		resp.Body.Close()
		cancel()
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	return &stream{body: resp.Body, cancel: cancel}, nil
}

type stream struct {
	body   io.ReadCloser
	cancel context.CancelFunc

	abortOnce sync.Once
	aborted   bool
	mu        sync.Mutex
}

func (s *stream) Abort() {
	s.abortOnce.Do(func() {
		s.mu.Lock()
		s.aborted = true
		s.mu.Unlock()
		s.cancel()
		s.body.Close()
	})
}

func (s *stream) isAborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

func (s *stream) Frames(ctx context.Context) func(func(transport.RawFrame, error) bool) {
	return func(yield func(transport.RawFrame, error) bool) {
		ctx, span := tracer.Start(ctx, "read event stream")
		defer span.End()
		defer s.body.Close()

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				s.Abort()
			case <-done:
			}
		}()

		requestToFirstFrame := time.Now()
		firstFrameSeen := false

		scanner := bufio.NewScanner(s.body)
		scanner.Buffer(make([]byte, 0, 4096), scanBufferSize)

		var data []string
		for scanner.Scan() {
			line := scanner.Text()

			// Blank line terminates one SSE event.
			if line == "" {
				if len(data) == 0 {
					continue
				}
				payload := strings.Join(data, "\n")
				data = nil

				if !firstFrameSeen {
					firstFrameSeen = true
					span.SetAttributes(attribute.Float64("response.request_to_first_frame_time", time.Since(requestToFirstFrame).Seconds()))
					span.AddEvent("received first frame")
				}
				if !yield(transport.RawFrame(payload), nil) {
					return
				}
				continue
			}

			if strings.HasPrefix(line, dataPrefix) {
				data = append(data, strings.TrimSpace(strings.TrimPrefix(line, dataPrefix)))
			}
			// Comment and field lines other than data are skipped.
		}

		if len(data) > 0 {
			if !yield(transport.RawFrame(strings.Join(data, "\n")), nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if s.isAborted() {
				logger.DebugContext(ctx, "event stream aborted", "error", err)
				return
			}
			err = fmt.Errorf("error reading event stream: %w", err)
			span.RecordError(err)
			yield(nil, err)
		}
	}
}
