package core

import (
	"crypto/tls"
	"net/http"
	"time"
)

// GetHTTPClient returns a client with the given timeout that honours
// AllowSelfSignedCerts. A nil cfg yields a verifying client.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if cfg != nil && cfg.AllowSelfSignedCerts {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		client.Transport = transport
	}
	return client
}
