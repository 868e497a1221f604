package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvtotext/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for the history log.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithRequestMeta(ctx, core.RequestMeta{
		IPAddress: clientIP(r), // RemoteAddr already rewritten by TrustedRealIP
		UserAgent: r.UserAgent(),
	})
}
