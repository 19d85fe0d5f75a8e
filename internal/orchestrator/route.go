package orchestrator

import (
	"strings"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// routingOrder is the scan order for lenient matching. generate_code and
// synthesize are checked before end so a verbose reply that names a real
// action is not swallowed by the default.
var routingOrder = []core.RoutingDecision{
	core.RouteGenerateCode,
	core.RouteSynthesize,
	core.RouteEnd,
}

// ParseRouting maps a free-text reasoning reply onto the routing
// enumeration. The reply is untrusted text, so parsing is total: an exact
// token match wins, a reply that merely contains a token is accepted, and
// anything else fails closed into end with ok=false. No reply can stall
// the state machine.
func ParseRouting(reply string) (core.RoutingDecision, bool) {
	token := strings.ToLower(strings.TrimSpace(reply))
	token = strings.Trim(token, "'\"` \t.")

	for _, d := range routingOrder {
		if token == string(d) {
			return d, true
		}
	}
	for _, d := range routingOrder {
		if strings.Contains(token, string(d)) {
			return d, true
		}
	}
	return core.RouteEnd, false
}

// StripCodeFences removes a markdown code fence wrapper, including a
// language tag on the opening fence, from a generated code reply.
func StripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		tag := strings.TrimSpace(out[:i])
		if tag == "" || isLanguageTag(tag) {
			out = out[i+1:]
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// isLanguageTag reports whether the text after an opening fence looks like
// a language identifier rather than code.
func isLanguageTag(s string) bool {
	if len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
