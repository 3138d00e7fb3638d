package theme

import (
	"net/http"
	"net/url"
)

// RequestContext exposes request-carried parameters to the resolver
type RequestContext interface {
	// Param returns the value for key and whether the key was present at all
	Param(key string) (string, bool)
}

// Params is a RequestContext over a plain map
type Params map[string]string

// Param implements RequestContext
func (p Params) Param(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Values is a RequestContext over URL-encoded values; the first value wins
type Values url.Values

// Param implements RequestContext
func (v Values) Param(key string) (string, bool) {
	vals, ok := v[key]
	if !ok {
		return "", false
	}
	if len(vals) == 0 {
		return "", true
	}
	return vals[0], true
}

// Chain consults each context in order; the first one carrying the key wins
type Chain []RequestContext

// Param implements RequestContext
func (c Chain) Param(key string) (string, bool) {
	for _, ctx := range c {
		if ctx == nil {
			continue
		}
		if v, ok := ctx.Param(key); ok {
			return v, true
		}
	}
	return "", false
}

// FromHTTP builds a context over path variables, then the query string, then
// the parsed form body. pathVars may be nil.
func FromHTTP(r *http.Request, pathVars map[string]string) RequestContext {
	chain := Chain{Params(pathVars), Values(r.URL.Query())}
	if r.PostForm != nil {
		chain = append(chain, Values(r.PostForm))
	}
	return chain
}
