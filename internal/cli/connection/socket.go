package connection

import (
	"context"
	"net"
	"net/http"
)

// unixTransport returns an HTTP transport that dials the given Unix
// socket regardless of the request host.
func unixTransport(path string) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
	}
}
