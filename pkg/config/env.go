package config

import (
	"os"
	"path/filepath"
)

// Environment variables read for the VAP proxy connection. EnvLegacyAPIKey is
// the old spelling still honored for existing deployments; EnvAPIKey wins when
// both are set.
const (
	EnvAPIKey       = "VAP_API_KEY"
	EnvLegacyAPIKey = "VAPE_API_KEY"
	EnvProxyPath    = "VAP_MCP_PROXY_PATH"
	EnvAPIURL       = "VAP_API_URL"
	EnvAPIBaseURL   = "VAP_API_BASE_URL"
)

// Defaults used when the corresponding variable is not set.
const (
	DefaultAPIURL     = "https://api.vapagent.com/mcp"
	DefaultAPIBaseURL = "https://api.vapagent.com"
	DefaultProxyFile  = "vap_mcp_proxy.py"
)

// Lookup reports the value of a named environment variable. Injecting it
// keeps credential resolution testable without mutating the real process
// environment.
type Lookup func(name string) (string, bool)

// OSLookup reads from the process environment.
func OSLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// FirstSet evaluates names in order and returns the value of the first name
// that is set, even when that value is empty. The ordering is the precedence:
// a set earlier name terminates the chain, so a later alias is consulted only
// when every name before it is absent.
func FirstSet(lookup Lookup, names ...string) (string, bool) {
	for _, name := range names {
		if value, ok := lookup(name); ok {
			return value, true
		}
	}
	return "", false
}

// CredentialSet holds the credential and endpoint configuration handed to the
// proxy process. An empty APIKey means no credential: the original proxy
// treats an empty value the same as an unset one, so the two collapse here
// and the downstream environment omits the key entirely.
type CredentialSet struct {
	APIKey     string
	APIURL     string
	APIBaseURL string
}

// HasKey reports whether a credential is present.
func (c CredentialSet) HasKey() bool {
	return c.APIKey != ""
}

// ResolveCredentials reads the API key and endpoint URLs from the
// environment. The primary key variable takes precedence over the legacy
// alias: when it is set, even to an empty string, the alias is never
// consulted. Absence of a key is a valid state, not an error.
func ResolveCredentials(lookup Lookup) CredentialSet {
	key, _ := FirstSet(lookup, EnvAPIKey, EnvLegacyAPIKey)
	apiURL, ok := FirstSet(lookup, EnvAPIURL)
	if !ok {
		apiURL = DefaultAPIURL
	}
	baseURL, ok := FirstSet(lookup, EnvAPIBaseURL)
	if !ok {
		baseURL = DefaultAPIBaseURL
	}
	return CredentialSet{
		APIKey:     key,
		APIURL:     apiURL,
		APIBaseURL: baseURL,
	}
}

// ResolveProxyPath returns the filesystem path of the VAP MCP proxy script:
// the override variable when set, otherwise the default file under the user
// home directory. The path is not checked for existence here; a missing
// script surfaces as a launch failure when the descriptor is dialed.
func ResolveProxyPath(lookup Lookup) string {
	if path, ok := FirstSet(lookup, EnvProxyPath); ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProxyFile
	}
	return filepath.Join(home, DefaultProxyFile)
}
