package config

import (
	"os"
	"path/filepath"
	"testing"
)

// mapLookup builds a Lookup over a fixed set of variables.
func mapLookup(vars map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestFirstSet(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		names  []string
		want   string
		wantOK bool
	}{
		{
			name:   "first wins",
			vars:   map[string]string{"A": "one", "B": "two"},
			names:  []string{"A", "B"},
			want:   "one",
			wantOK: true,
		},
		{
			name:   "falls through to second",
			vars:   map[string]string{"B": "two"},
			names:  []string{"A", "B"},
			want:   "two",
			wantOK: true,
		},
		{
			name:   "set but empty still terminates the chain",
			vars:   map[string]string{"A": "", "B": "two"},
			names:  []string{"A", "B"},
			want:   "",
			wantOK: true,
		},
		{
			name:   "none set",
			vars:   map[string]string{},
			names:  []string{"A", "B"},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstSet(mapLookup(tt.vars), tt.names...)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FirstSet = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveCredentialsPrimaryWins(t *testing.T) {
	creds := ResolveCredentials(mapLookup(map[string]string{
		EnvAPIKey:       "primary",
		EnvLegacyAPIKey: "legacy",
	}))
	if creds.APIKey != "primary" {
		t.Errorf("expected primary key to win, got %q", creds.APIKey)
	}
}

func TestResolveCredentialsEmptyPrimaryShadowsLegacy(t *testing.T) {
	creds := ResolveCredentials(mapLookup(map[string]string{
		EnvAPIKey:       "",
		EnvLegacyAPIKey: "legacy-secret",
	}))
	if creds.APIKey != "" {
		t.Errorf("set primary must win even when empty, got %q", creds.APIKey)
	}
	if creds.HasKey() {
		t.Error("empty primary key must resolve to no credential")
	}
}

func TestResolveCredentialsLegacyFallback(t *testing.T) {
	creds := ResolveCredentials(mapLookup(map[string]string{
		EnvLegacyAPIKey: "legacy",
	}))
	if creds.APIKey != "legacy" {
		t.Errorf("expected legacy alias value, got %q", creds.APIKey)
	}
}

func TestResolveCredentialsAbsent(t *testing.T) {
	creds := ResolveCredentials(mapLookup(nil))
	if creds.HasKey() {
		t.Errorf("expected absent credential, got %q", creds.APIKey)
	}
	if creds.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %q", creds.APIURL)
	}
	if creds.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("expected default base URL, got %q", creds.APIBaseURL)
	}
}

func TestResolveCredentialsURLOverrides(t *testing.T) {
	creds := ResolveCredentials(mapLookup(map[string]string{
		EnvAPIURL:     "http://localhost:9100/mcp",
		EnvAPIBaseURL: "http://localhost:9100",
	}))
	if creds.APIURL != "http://localhost:9100/mcp" {
		t.Errorf("unexpected API URL %q", creds.APIURL)
	}
	if creds.APIBaseURL != "http://localhost:9100" {
		t.Errorf("unexpected base URL %q", creds.APIBaseURL)
	}
}

func TestResolveProxyPathOverride(t *testing.T) {
	path := ResolveProxyPath(mapLookup(map[string]string{
		EnvProxyPath: "/tmp/proxy.py",
	}))
	if path != "/tmp/proxy.py" {
		t.Errorf("expected override path, got %q", path)
	}
}

func TestResolveProxyPathDefault(t *testing.T) {
	path := ResolveProxyPath(mapLookup(nil))

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	want := filepath.Join(home, DefaultProxyFile)
	if path != want {
		t.Errorf("expected %q, got %q", want, path)
	}
}
