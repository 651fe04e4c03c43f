package api

import "testing"

func TestLogoutPolicy_ForcesLogout(t *testing.T) {
	policy := DefaultLogoutPolicy()
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"auth endpoint", "/auth/me", true},
		{"client endpoint", "/client/projects", true},
		{"profile endpoint", "/profile", true},
		{"teacher profile", "/teachers/profile", true},
		{"attendance check-in", "/teachers/attend/checkin", false},
		{"daily attendance", "/teachers/daily-attendance", false},
		{"daily departure", "/teachers/daily-departure", false},
		{"unclassified", "/marketplace/products", false},
		{"deny-list wins inside sensitive prefix", "/client/teachers/attend/checkin", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.ForcesLogout(tc.path); got != tc.want {
				t.Errorf("ForcesLogout(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestLogoutPolicy_CustomLists(t *testing.T) {
	policy := LogoutPolicy{
		SessionSensitive: []string{"/v2/session"},
		BestEffort:       []string{"/v2/session/ping"},
	}
	if !policy.ForcesLogout("/v2/session/renew") {
		t.Error("custom sensitive fragment should force logout")
	}
	if policy.ForcesLogout("/v2/session/ping") {
		t.Error("custom best-effort fragment should not force logout")
	}
	if policy.ForcesLogout("/auth/me") {
		t.Error("stock fragments should not apply once overridden")
	}
}
