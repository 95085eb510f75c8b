package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientMeta carries the request attributes recorded on a session row.
type ClientMeta struct {
	IP        string `validate:"omitempty,max=64"`
	UserAgent string `validate:"omitempty,max=512"`
}

// ClientMetaFromRequest derives the client address and user agent from an
// inbound request. The first X-Forwarded-For entry wins when present,
// otherwise the transport peer address with the port stripped.
func ClientMetaFromRequest(r *http.Request) ClientMeta {
	return ClientMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
