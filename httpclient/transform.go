package httpclient

import (
	"net/http"
	"slices"
)

// TransformRequestFunc rewrites an outgoing request before each attempt.
type TransformRequestFunc func(*http.Request) (*http.Request, error)

// TransformResponseFunc rewrites a successful response before it is
// returned.
type TransformResponseFunc func(*Response) (*Response, error)

// Pipeline is an ordered set of request and response transformers. The
// zero value is an empty pipeline. Pipelines are never modified in place.
type Pipeline struct {
	request  []TransformRequestFunc
	response []TransformResponseFunc
}

// NewPipeline creates a pipeline from the given chains. Nil functions are
// skipped.
func NewPipeline(req []TransformRequestFunc, resp []TransformResponseFunc) Pipeline {
	return Pipeline{}.Extend(req, resp)
}

// Extend returns a new pipeline running p's transformers first and the
// given ones after. p is not modified.
func (p Pipeline) Extend(req []TransformRequestFunc, resp []TransformResponseFunc) Pipeline {
	out := Pipeline{
		request:  slices.Clip(slices.Clone(p.request)),
		response: slices.Clip(slices.Clone(p.response)),
	}
	for _, fn := range req {
		if fn != nil {
			out.request = append(out.request, fn)
		}
	}
	for _, fn := range resp {
		if fn != nil {
			out.response = append(out.response, fn)
		}
	}
	return out
}

// Len returns the number of request and response transformers.
func (p Pipeline) Len() (request, response int) {
	return len(p.request), len(p.response)
}

// ApplyRequest runs the request chain in order. The first error stops the
// chain and is returned unmodified.
func (p Pipeline) ApplyRequest(req *http.Request) (*http.Request, error) {
	for _, fn := range p.request {
		next, err := fn(req)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, NewClientError("request transformer returned nil request", nil)
		}
		req = next
	}
	return req, nil
}

// ApplyResponse runs the response chain in order. The first error stops
// the chain and is returned unmodified.
func (p Pipeline) ApplyResponse(resp *Response) (*Response, error) {
	for _, fn := range p.response {
		next, err := fn(resp)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, NewClientError("response transformer returned nil response", nil)
		}
		resp = next
	}
	return resp, nil
}
