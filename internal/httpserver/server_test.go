package httpserver

import (
	"io"
	"net/http"
	"testing"
	"time"

	"log/slog"
)

func TestServerTimeouts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := New(":0", http.NewServeMux(), logger, Timeouts{
		Read:  2 * time.Second,
		Write: 3 * time.Second,
		Idle:  4 * time.Second,
	})
	if s.server.ReadTimeout != 2*time.Second ||
		s.server.WriteTimeout != 3*time.Second ||
		s.server.IdleTimeout != 4*time.Second {
		t.Errorf("timeouts = %v/%v/%v, want 2s/3s/4s",
			s.server.ReadTimeout, s.server.WriteTimeout, s.server.IdleTimeout)
	}

	// Zero values fall back to the defaults.
	s = New(":0", http.NewServeMux(), logger, Timeouts{})
	if s.server.ReadTimeout != 15*time.Second ||
		s.server.WriteTimeout != 15*time.Second ||
		s.server.IdleTimeout != 60*time.Second {
		t.Errorf("default timeouts = %v/%v/%v, want 15s/15s/60s",
			s.server.ReadTimeout, s.server.WriteTimeout, s.server.IdleTimeout)
	}
}
