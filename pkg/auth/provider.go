package auth

import (
	"os"
	"strings"

	"github.com/opsforge/sage/pkg/config"
)

// Provider supplies the bearer credential attached to outbound requests.
// Token returns the credential and whether one is available. Absence is
// not an error: requests proceed unauthenticated and the server decides.
type Provider interface {
	Token() (string, bool)
}

// Static is a fixed credential, mainly for tests.
type Static string

func (s Static) Token() (string, bool) {
	return string(s), s != ""
}

// FileProvider reads the persisted token file on every call, so a token
// written or rotated after startup is picked up without restarting.
type FileProvider struct {
	Path string
}

func (f FileProvider) Token() (string, bool) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// FromConfig builds a FileProvider rooted at the settings directory
func FromConfig() Provider {
	settings := config.Get()
	path := settings.Auth.TokenFile
	if path != "" && path[0] != '/' {
		path = config.BuildSettingsPath(path)
	}
	return FileProvider{Path: path}
}
