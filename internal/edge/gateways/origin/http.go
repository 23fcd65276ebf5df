package origin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/haukened/weave-edge/internal/edge/common/log"
)

// hopHeaders are connection-scoped and never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// HTTPOrigin proxies requests to an upstream asset server.
type HTTPOrigin struct {
	client *resty.Client
	base   string
}

type HTTPOptions struct {
	BaseURL string
	Timeout time.Duration
	Logger  log.Logger
}

// NewHTTPOrigin returns an origin rooted at opts.BaseURL. Redirects are
// handed back to the client rather than followed.
func NewHTTPOrigin(opts HTTPOptions) (*HTTPOrigin, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin url %q: scheme must be http or https", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	base := strings.TrimRight(u.String(), "/")
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(opts.Timeout).
		SetLogger(restyLogger{logger}).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &HTTPOrigin{client: client, base: base}, nil
}

// Fetch forwards r upstream and returns the raw, unread response.
func (o *HTTPOrigin) Fetch(ctx context.Context, r *http.Request) (*http.Response, error) {
	req := o.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeaderMultiValues(forwardHeaders(r.Header))

	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		req.SetBody(r.Body)
	}

	resp, err := req.Execute(r.Method, r.URL.RequestURI())
	if err != nil {
		return nil, fmt.Errorf("fetch %s%s: %w", o.base, r.URL.Path, err)
	}
	if resp.RawResponse == nil {
		return nil, errors.New("origin returned no response")
	}
	stripHopHeaders(resp.RawResponse.Header)
	return resp.RawResponse, nil
}

// stripHopHeaders removes hop-by-hop headers from h, including any named in
// its Connection header.
func stripHopHeaders(h http.Header) {
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

// forwardHeaders copies inbound headers minus hop-by-hop ones. Accept-Encoding
// is dropped so the transport negotiates compression itself and hands back a
// decoded body that is safe to rewrite.
func forwardHeaders(in http.Header) map[string][]string {
	out := in.Clone()
	if out == nil {
		out = make(http.Header)
	}
	stripHopHeaders(out)
	out.Del("Accept-Encoding")
	out.Del("Host")
	return out
}

// restyLogger routes resty diagnostics into the edge logger.
type restyLogger struct {
	log.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.Logger.Error(map[string]any{"component": "origin"}, fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.Logger.Warn(map[string]any{"component": "origin"}, fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.Logger.Debug(map[string]any{"component": "origin"}, fmt.Sprintf(format, v...))
}

var _ Origin = (*HTTPOrigin)(nil)
