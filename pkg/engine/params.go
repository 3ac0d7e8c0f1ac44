package engine

import (
	"net/url"
	"strings"
)

// Param is a single query parameter sent to the daemon.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. The daemon does not
// care about ordering, but option types emit their parameters in
// declaration order and tests rely on that, so parameters travel as a
// slice rather than a url.Values map.
type Params []Param

// Add appends a parameter and returns the extended list.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the value of the first parameter with the given key, or
// an empty string if the key is absent.
func (p Params) Get(key string) string {
	for _, param := range p {
		if param.Key == key {
			return param.Value
		}
	}

	return ""
}

// Encode serializes the parameters into URL-encoded form. Unlike
// url.Values.Encode, the order of the pairs is preserved.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, param := range p {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(param.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}

	return builder.String()
}

// Values converts the parameters to a url.Values map for callers that
// do not care about ordering.
func (p Params) Values() url.Values {
	values := url.Values{}
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}

	return values
}

// ParamEncoder is implemented by option types that contribute query
// parameters to a request. Implementations return the full parameter
// list or an error; they never return a partial list.
type ParamEncoder interface {
	EncodeParams() (Params, error)
}
