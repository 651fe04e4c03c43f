package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://back.codgoo.com/codgoo/public/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Locale != "en" {
		t.Errorf("Locale = %q, want en", cfg.Locale)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout())
	}
	if cfg.SessionScope != "default" {
		t.Errorf("SessionScope = %q, want default", cfg.SessionScope)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.AccessTTL() != time.Hour {
		t.Errorf("AccessTTL = %v, want 1h", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 720*time.Hour {
		t.Errorf("RefreshTTL = %v, want 720h", cfg.RefreshTTL())
	}
	if cfg.SessionSensitiveList() != nil {
		t.Errorf("SessionSensitiveList = %v, want nil (stock list)", cfg.SessionSensitiveList())
	}
	if cfg.DevAttendOpen {
		t.Error("DevAttendOpen should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CODGOO_API_BASE_URL", "http://localhost:8089")
	t.Setenv("CODGOO_LOCALE", "ar")
	t.Setenv("CODGOO_HTTP_TIMEOUT", "5s")
	t.Setenv("CODGOO_SESSION_SENSITIVE_PATHS", "/auth/, /client/")
	t.Setenv("CODGOO_BEST_EFFORT_PATHS", "/teachers/attend/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8089" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Locale != "ar" {
		t.Errorf("Locale = %q, want ar", cfg.Locale)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout())
	}
	if got, want := cfg.SessionSensitiveList(), []string{"/auth/", "/client/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SessionSensitiveList = %v, want %v", got, want)
	}
	if got, want := cfg.BestEffortList(), []string{"/teachers/attend/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("BestEffortList = %v, want %v", got, want)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CODGOO_BCRYPT_COST", "50")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range bcrypt cost")
	}
}

func TestLoad_ProductionRejectsDefaultSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CODGOO_APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error: default dev secret in production")
	}

	t.Setenv("CODGOO_DEV_JWT_SECRET", "real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with overridden secret: %v", err)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir+"/.env", "CODGOO_LOCALE=fr\nCODGOO_SESSION_SCOPE=staging\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "fr" {
		t.Errorf("Locale = %q, want fr (from .env)", cfg.Locale)
	}
	if cfg.SessionScope != "staging" {
		t.Errorf("SessionScope = %q, want staging (from .env)", cfg.SessionScope)
	}

	// Real env vars take precedence over .env values.
	t.Setenv("CODGOO_LOCALE", "de")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != "de" {
		t.Errorf("Locale = %q, want de (env over .env)", cfg.Locale)
	}
}

func TestTimeout_InvalidFallsBack(t *testing.T) {
	cfg := &Config{HTTPTimeout: "not-a-duration"}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s fallback", cfg.Timeout())
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"/a", []string{"/a"}},
		{"/a,/b", []string{"/a", "/b"}},
		{" /a , , /b ", []string{"/a", "/b"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
