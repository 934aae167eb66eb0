// Package common contains shared constants, helpers and sentinel errors used
// across authflow components.
package common

const (
	// AuthorizationHeader carries bearer credentials on outbound requests.
	AuthorizationHeader = "Authorization"
	// BearerScheme prefixes the token in AuthorizationHeader.
	BearerScheme = "Bearer"
)

// BearerHeaders returns the header set that authenticates a request with
// token. An empty token yields nil.
func BearerHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{AuthorizationHeader: BearerScheme + " " + token}
}
