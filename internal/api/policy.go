package api

import "strings"

// LogoutPolicy decides whether a 401 response proves the session is no
// longer valid. SessionSensitive paths treat a 401 as authoritative and
// force a logout; BestEffort paths may 401 for unrelated reasons (e.g. a
// time-window restriction on attendance check-in) and must never force one.
// Both lists are path fragments matched by substring, and both are
// configurable (CODGOO_SESSION_SENSITIVE_PATHS, CODGOO_BEST_EFFORT_PATHS).
type LogoutPolicy struct {
	SessionSensitive []string
	BestEffort       []string
}

// DefaultLogoutPolicy returns the stock endpoint classification.
func DefaultLogoutPolicy() LogoutPolicy {
	return LogoutPolicy{
		SessionSensitive: []string{"/auth/", "/client/", "/profile", "/teachers/profile"},
		BestEffort:       []string{"/teachers/attend/", "/teachers/daily-attendance", "/teachers/daily-departure"},
	}
}

// ForcesLogout reports whether a 401 on the given request path must clear
// the credential store. The deny-list wins over the allow-list.
func (p LogoutPolicy) ForcesLogout(path string) bool {
	for _, frag := range p.BestEffort {
		if frag != "" && strings.Contains(path, frag) {
			return false
		}
	}
	for _, frag := range p.SessionSensitive {
		if frag != "" && strings.Contains(path, frag) {
			return true
		}
	}
	return false
}
