package httpapi

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// checkDependencies pings every configured dependency with a short deadline
// and returns the failing ones by name.
func (s *Server) checkDependencies(r *http.Request) map[string]string {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, p := range s.deps {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	return failed
}
