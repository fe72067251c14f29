package gateway

import "net/http"

const (
	DefaultBaseURL      = "https://ipfs.io"
	DefaultMaxBodyBytes = 1 << 20
)

type Config struct {
	// BaseURL is the IPFS HTTP gateway that ipfs:// URIs are rewritten to.
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
	// MaxBodyBytes caps the metadata document size. Defaults to 1 MiB.
	MaxBodyBytes int64
}
