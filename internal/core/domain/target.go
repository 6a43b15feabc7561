// Package domain defines the core domain models for tokengate.
package domain

import (
	"regexp"
)

// TargetScheme is the fixed marker that introduces an app-auth target.
const TargetScheme = "ilias_app_auth"

// targetPattern matches the composite target parameter:
// ilias_app_auth|<userId digits>|<refId digits>|<token rest-of-string>.
// The final group deliberately consumes the remainder, pipes included.
var targetPattern = regexp.MustCompile(`^ilias_app_auth\|(\d+)\|(\d+)\|(.+)$`)

// AuthTarget is the decoded triple carried by the redirect URL.
type AuthTarget struct {
	// UserID is the identifier of the user to authenticate.
	UserID string

	// RefID is the opaque resource reference resolved to the redirect URL.
	RefID string

	// Token is the presented one-time credential value.
	Token string
}

// ParseAuthTarget decodes a composite target parameter.
//
// Returns ok=false when the value does not match the fixed shape in full;
// a non-match is a routing decision, not an error, and the caller must
// hand the request back to normal dispatch.
func ParseAuthTarget(raw string) (AuthTarget, bool) {
	m := targetPattern.FindStringSubmatch(raw)
	if m == nil {
		return AuthTarget{}, false
	}
	return AuthTarget{
		UserID: m[1],
		RefID:  m[2],
		Token:  m[3],
	}, true
}
