// Package bridge declares and dials child-process MCP tool providers.
//
// A ConnectionDescriptor is pure data: building one performs no process or
// network I/O. The child process is only spawned when the descriptor is
// handed to Dial.
package bridge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vapagentmedia/vap-agent/pkg/config"
)

// ProxyCommand is the interpreter used to run the VAP MCP proxy script.
const ProxyCommand = "python"

// ProxyCallTimeout bounds how long the runtime may wait on a single call
// into the proxy. Video generation is the slowest operation class and can
// take minutes.
const ProxyCallTimeout = 300 * time.Second

// ConnectionDescriptor holds the launch parameters for a stdio tool
// provider: the executable, its arguments, the environment variables passed
// to the child process, and the per-call timeout ceiling.
type ConnectionDescriptor struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	Timeout time.Duration     `json:"timeout"`
}

// Validate checks the descriptor for internal consistency. It does not
// check that the command resolves to an executable; that is a launch-time
// concern owned by Dial.
func (d ConnectionDescriptor) Validate() error {
	if d.Command == "" {
		return errors.New("connection descriptor: command is required")
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("connection descriptor: timeout must be positive, got %s", d.Timeout)
	}
	return nil
}

// EnvSlice renders the environment map as KEY=VALUE pairs in sorted key
// order, the form the stdio transport expects.
func (d ConnectionDescriptor) EnvSlice() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+d.Env[k])
	}
	return out
}

// Clone returns a deep copy so a handed-off descriptor cannot be mutated
// through shared slices or maps.
func (d ConnectionDescriptor) Clone() ConnectionDescriptor {
	out := d
	out.Args = append([]string(nil), d.Args...)
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	return out
}

// Equal reports structural equality with other.
func (d ConnectionDescriptor) Equal(other ConnectionDescriptor) bool {
	if d.Command != other.Command || d.Timeout != other.Timeout {
		return false
	}
	if len(d.Args) != len(other.Args) || len(d.Env) != len(other.Env) {
		return false
	}
	for i, arg := range d.Args {
		if other.Args[i] != arg {
			return false
		}
	}
	for k, v := range d.Env {
		if ov, ok := other.Env[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// NewProxyDescriptor builds the descriptor for the VAP MCP proxy script.
// The environment shape depends on whether a credential is present: the key
// variable is omitted entirely when there is none, so the proxy can tell
// "no credential" apart from "credential set".
func NewProxyDescriptor(creds config.CredentialSet, proxyPath string) ConnectionDescriptor {
	var env map[string]string
	if creds.HasKey() {
		env = authenticatedEnv(creds)
	} else {
		env = anonymousEnv(creds)
	}
	return ConnectionDescriptor{
		Command: ProxyCommand,
		Args:    []string{proxyPath},
		Env:     env,
		Timeout: ProxyCallTimeout,
	}
}

func authenticatedEnv(creds config.CredentialSet) map[string]string {
	return map[string]string{
		config.EnvAPIKey:     creds.APIKey,
		config.EnvAPIURL:     creds.APIURL,
		config.EnvAPIBaseURL: creds.APIBaseURL,
	}
}

func anonymousEnv(creds config.CredentialSet) map[string]string {
	return map[string]string{
		config.EnvAPIURL:     creds.APIURL,
		config.EnvAPIBaseURL: creds.APIBaseURL,
	}
}
