// ABOUTME: Test helpers for config tests
// ABOUTME: Clears every variable Load reads so host settings cannot leak in

package config

import "testing"

var configEnvVars = []string{
	"IRIS_PROVIDER",
	"SUPABASE_URL",
	"SUPABASE_ANON_KEY",
	"IRIS_REQUEST_TIMEOUT",
	"IRIS_RETRY_MAX",
	"IRIS_RATE_LIMIT",
	"IRIS_CACHE_TTL",
	"IRIS_RESET_REDIRECT",
	"IRIS_CONFIG_DIR",
	"IRIS_LIVE_GATE",
	"XDG_CONFIG_HOME",
}

// withCleanEnv blanks every config variable for the duration of the test
// and applies extra on top. t.Setenv restores the previous values.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanEnv(t, map[string]string{"IRIS_PROVIDER": "supabase"})
//	}
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for k, v := range extra {
		t.Setenv(k, v)
	}
}

// missingEnvFile returns a path that does not exist, so Load skips .env
func missingEnvFile(t *testing.T) string {
	t.Helper()
	return t.TempDir() + "/absent.env"
}
