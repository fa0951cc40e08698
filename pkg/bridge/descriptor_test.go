package bridge

import (
	"reflect"
	"testing"
	"time"

	"github.com/vapagentmedia/vap-agent/pkg/config"
)

func TestNewProxyDescriptorWithKey(t *testing.T) {
	creds := config.CredentialSet{
		APIKey:     "abc123",
		APIURL:     config.DefaultAPIURL,
		APIBaseURL: config.DefaultAPIBaseURL,
	}
	desc := NewProxyDescriptor(creds, "/tmp/proxy.py")

	if desc.Command != "python" {
		t.Errorf("unexpected command %q", desc.Command)
	}
	if !reflect.DeepEqual(desc.Args, []string{"/tmp/proxy.py"}) {
		t.Errorf("expected args [/tmp/proxy.py], got %v", desc.Args)
	}
	if desc.Timeout != 300*time.Second {
		t.Errorf("expected 300s timeout, got %s", desc.Timeout)
	}

	want := map[string]string{
		"VAP_API_KEY":      "abc123",
		"VAP_API_URL":      config.DefaultAPIURL,
		"VAP_API_BASE_URL": config.DefaultAPIBaseURL,
	}
	if !reflect.DeepEqual(desc.Env, want) {
		t.Errorf("env = %v, want %v", desc.Env, want)
	}
}

func TestNewProxyDescriptorWithoutKey(t *testing.T) {
	creds := config.CredentialSet{
		APIURL:     config.DefaultAPIURL,
		APIBaseURL: config.DefaultAPIBaseURL,
	}
	desc := NewProxyDescriptor(creds, "/tmp/proxy.py")

	if len(desc.Env) != 2 {
		t.Fatalf("expected two env entries, got %d: %v", len(desc.Env), desc.Env)
	}
	if _, ok := desc.Env["VAP_API_KEY"]; ok {
		t.Error("expected key variable to be omitted entirely, not set empty")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		desc    ConnectionDescriptor
		wantErr bool
	}{
		{
			name:    "valid",
			desc:    ConnectionDescriptor{Command: "python", Timeout: time.Second},
			wantErr: false,
		},
		{
			name:    "empty command",
			desc:    ConnectionDescriptor{Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			desc:    ConnectionDescriptor{Command: "python"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			desc:    ConnectionDescriptor{Command: "python", Timeout: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvSlice(t *testing.T) {
	desc := ConnectionDescriptor{
		Command: "python",
		Timeout: time.Second,
		Env: map[string]string{
			"VAP_API_URL": "https://api.vapagent.com/mcp",
			"VAP_API_KEY": "abc123",
		},
	}

	got := desc.EnvSlice()
	want := []string{
		"VAP_API_KEY=abc123",
		"VAP_API_URL=https://api.vapagent.com/mcp",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnvSlice = %v, want %v", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewProxyDescriptor(config.CredentialSet{APIKey: "k", APIURL: "u", APIBaseURL: "b"}, "/tmp/proxy.py")
	clone := orig.Clone()

	clone.Env["VAP_API_KEY"] = "tampered"
	clone.Args[0] = "/other/path"

	if orig.Env["VAP_API_KEY"] != "k" {
		t.Error("clone shares env map with original")
	}
	if orig.Args[0] != "/tmp/proxy.py" {
		t.Error("clone shares args slice with original")
	}
}

func TestEqual(t *testing.T) {
	creds := config.CredentialSet{APIKey: "k", APIURL: "u", APIBaseURL: "b"}
	a := NewProxyDescriptor(creds, "/tmp/proxy.py")
	b := NewProxyDescriptor(creds, "/tmp/proxy.py")
	if !a.Equal(b) {
		t.Error("expected descriptors from identical inputs to be equal")
	}

	c := NewProxyDescriptor(creds, "/other/proxy.py")
	if a.Equal(c) {
		t.Error("expected differing args to break equality")
	}

	d := a.Clone()
	d.Env["VAP_API_KEY"] = "other"
	if a.Equal(d) {
		t.Error("expected differing env to break equality")
	}
}
