// File: cmdserver/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package cmdserver

import (
	"strings"
	"sync/atomic"
)

var lastRequestID atomic.Uint64

// Request is one parsed input line.
type Request struct {
	ID     uint64
	Cmd    string
	Params map[string]string
	Raw    string
}

// Param returns a parameter value and whether it was present.
func (r *Request) Param(key string) (string, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// ParseRequest splits a line into a command and key=value parameters.
// Tokens are separated by single spaces and parsing stops at the first
// empty token. A value ends at the next '=', a token without '=' is a key
// with an empty value, and the first occurrence of a key wins.
func ParseRequest(line string) *Request {
	req := &Request{
		ID:     lastRequestID.Add(1),
		Params: make(map[string]string),
		Raw:    line,
	}
	tokens := strings.Split(line, " ")
	req.Cmd = tokens[0]
	for _, kv := range tokens[1:] {
		if kv == "" {
			break
		}
		key, rest, _ := strings.Cut(kv, "=")
		val, _, _ := strings.Cut(rest, "=")
		if _, dup := req.Params[key]; !dup {
			req.Params[key] = val
		}
	}
	return req
}

// rawRequest wraps an unparsed line.
func rawRequest(line string) *Request {
	return &Request{ID: lastRequestID.Add(1), Raw: line}
}
