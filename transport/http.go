package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

const maxResponseSize = 32 << 20

// HTTPTransport posts each request and hands the response to the message
// handler before returning, so it serves SYNC requests.
type HTTPTransport struct {
	url     string
	header  http.Header
	client  *http.Client
	limiter *rate.Limiter
	handler *MessageHandler
}

var _ Transporter = (*HTTPTransport)(nil)

type HTTPOption func(*HTTPTransport)

func WithHeader(header http.Header) HTTPOption {
	return func(t *HTTPTransport) {
		t.header = header.Clone()
	}
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second; zero disables the limit.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(t *HTTPTransport) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewHTTPTransport(url string, handler *MessageHandler, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		url:     url,
		header:  http.Header{},
		client:  &http.Client{},
		handler: handler,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Kind() types.TransportKind {
	return types.TransportHTTP
}

func (t *HTTPTransport) Sync() bool {
	return true
}

func (t *HTTPTransport) Duplex() bool {
	return false
}

func (t *HTTPTransport) BlockchainRPC(ctx context.Context, req *types.RPCRequest, requirement types.TransportRequirement, debugBroadcast bool) error {
	body, err := json.Marshal(req)
	if err != nil {
		return xerrors.Errorf("encoding request %d: %w", req.ID, err)
	}
	if debugBroadcast {
		log.Infow("broadcast", "transport", t.Kind(), "requirement", requirement, "payload", string(body))
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return xerrors.Errorf("waiting for rate limiter: %w", err)
		}
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return xerrors.Errorf("building http request: %w", err)
	}
	for k, vs := range t.header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(hreq)
	if err != nil {
		return xerrors.Errorf("posting request %d: %w", req.ID, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return xerrors.Errorf("reading response to %d: %w", req.ID, err)
	}
	if debugBroadcast {
		log.Infow("received", "transport", t.Kind(), "status", resp.StatusCode, "payload", string(data))
	}

	// nodes may answer a JSON-RPC error with a 4xx/5xx status
	herr := t.handler.HandleMessage(data)
	if resp.StatusCode != http.StatusOK && herr != nil {
		return xerrors.Errorf("node answered %d to request %d: %s", resp.StatusCode, req.ID, string(data))
	}
	return herr
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
