package telegram

import (
	"net/http"
	"testing"
	"time"
)

func TestBuildHTTPClient(t *testing.T) {
	// sends are retried by the dispatcher; the client makes one attempt
	c := BuildHTTPClient(0)
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T", c.Transport)
	}
	if tr.ResponseHeaderTimeout != pollSlack {
		t.Fatalf("header timeout = %v", tr.ResponseHeaderTimeout)
	}

	c = BuildHTTPClient(50 * time.Second)
	tr, ok = c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T", c.Transport)
	}
	if got := tr.ResponseHeaderTimeout; got != 50*time.Second+pollSlack {
		t.Fatalf("long poll would time out: header timeout = %v", got)
	}
	if c.Timeout <= 50*time.Second {
		t.Fatalf("client timeout = %v", c.Timeout)
	}
}
