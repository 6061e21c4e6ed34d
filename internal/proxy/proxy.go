// Package proxy forwards /api requests to the inference backend unchanged.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	apihttp "github.com/kartoza/symptom-checker/internal/httputil"
	"github.com/kartoza/symptom-checker/internal/logging"
)

// Proxy is a reverse proxy to a single backend origin
type Proxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	logger logging.Logger
}

// New creates a proxy to target. The incoming path and query are kept.
func New(target string, logger logging.Logger) (*Proxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target %q: %w", target, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q: want an http(s) origin", target)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	p := &Proxy{target: u, logger: logger.Named("proxy")}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// Target returns the backend origin
func (p *Proxy) Target() string {
	return p.target.String()
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Warn("backend unreachable",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.String("target", p.target.String()),
		logging.Err(err),
	)
	apihttp.RespondError(w, http.StatusBadGateway, "backend unavailable")
}
