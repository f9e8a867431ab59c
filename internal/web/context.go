package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/fileprobe/internal/core"
)

// withRequestMetadata adds the client IP to the context for engine logs.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return core.ContextWithClientIP(ctx, ip)
}
