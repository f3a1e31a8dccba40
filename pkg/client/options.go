package client

import (
	"time"

	"github.com/valyala/fasthttp"
)

type Options struct {
	BaseURL        string
	HTTPClient     *fasthttp.Client
	Session        *Session
	Timeout        time.Duration
	OnUnauthorized func()
}

type OptionFunc func(opts *Options)

func WithBaseURL(baseURL string) OptionFunc {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

func WithHTTPClient(httpClient *fasthttp.Client) OptionFunc {
	return func(opts *Options) {
		opts.HTTPClient = httpClient
	}
}

func WithSession(session *Session) OptionFunc {
	return func(opts *Options) {
		opts.Session = session
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithUnauthorizedHandler runs fn after a 401 has cleared the session. This
// is where callers send the user back to sign in.
func WithUnauthorizedHandler(fn func()) OptionFunc {
	return func(opts *Options) {
		opts.OnUnauthorized = fn
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		BaseURL: "http://localhost:5000/api/v1",
		Timeout: 30 * time.Second,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &fasthttp.Client{
			Name:         "taskboard-client",
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
		}
	}
	if opts.Session == nil {
		opts.Session = NewSession("")
	}
	return opts
}
