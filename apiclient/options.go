package apiclient

import (
	"net/http"
	"net/url"
)

type requestOptions struct {
	query  url.Values
	header http.Header
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.query.Add(key, value)
	}
}

// WithQueryValues adds every parameter in v.
func WithQueryValues(v url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, values := range v {
			for _, value := range values {
				o.query.Add(key, value)
			}
		}
	}
}

// WithHeader sets a request header. The client's defaults
// (Content-Type, Accept, Authorization) override caller values.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

func newRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
