package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Predictia/chronoplan/pkg/dataset"
	"github.com/Predictia/chronoplan/pkg/request"
)

// Static errors surfaced to the planner's caller
var (
	// ErrUnavailable is returned when the backend cannot be reached or fails internally
	ErrUnavailable = errors.New("archive backend unavailable")
	// ErrRequestRejected is returned when the backend rejects a request as malformed
	ErrRequestRejected = errors.New("archive request rejected")
)

// retrieveResponse is the JSON body returned by the archive's retrieve
// endpoint.
type retrieveResponse struct {
	Times  []int64              `json:"times"` // unix seconds, UTC
	Series map[string][]float64 `json:"series"`
	Rows   int                  `json:"rows"`
}

// ClientInterface defines the methods for interacting with the archive
type ClientInterface interface {
	// Retrieve dispatches a resolved request and returns the retrieved frame
	Retrieve(ctx context.Context, req request.Request) (*dataset.Frame, error)
	// Start initializes the client
	Start() error
	// Stop closes the client
	Stop() error
}

// client implements ClientInterface over the archive's HTTP interface
type client struct {
	log          logrus.FieldLogger
	httpClient   *http.Client
	render       *request.Engine
	baseURL      string
	document     string
	debug        bool
	queryTimeout time.Duration
}

// NewClient creates a new HTTP-based archive client
func NewClient(logger logrus.FieldLogger, cfg *Config) (ClientInterface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.SetDefaults()

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     cfg.KeepAlive,
	}

	document := cfg.Document
	if document == "" {
		document = request.DefaultDocument
	}

	return &client{
		log:          logger.WithField("component", "archive-http"),
		httpClient:   &http.Client{Transport: transport},
		render:       request.NewEngine(),
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		document:     document,
		debug:        cfg.Debug,
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

func (c *client) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}

	c.log.Info("Connected to archive HTTP interface")

	return nil
}

func (c *client) Stop() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}

	c.log.Info("Closed archive HTTP client")

	return nil
}

// Retrieve renders the wire document for the request, posts it to the
// archive, and decodes the returned frame. Failures are mapped onto the
// unavailable/rejected taxonomy; there is no retry here.
func (c *client) Retrieve(ctx context.Context, req request.Request) (*dataset.Frame, error) {
	body, err := c.render.Render(c.document, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestRejected, err)
	}

	if c.debug {
		c.log.WithField("document", body).Debug("Dispatching retrieve")
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "text/plain")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded retrieveResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	frame := &dataset.Frame{
		Times:  make([]time.Time, len(decoded.Times)),
		Series: decoded.Series,
	}
	for i, ts := range decoded.Times {
		frame.Times[i] = time.Unix(ts, 0).UTC()
	}

	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return frame, nil
}
