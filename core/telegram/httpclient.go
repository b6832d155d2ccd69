package telegram

import (
	"net"
	"net/http"
	"time"
)

const (
	dialTimeout      = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	idleConnTimeout  = 30 * time.Second
	keepAlive        = 30 * time.Second
	// pollSlack is added on top of the long-poll timeout: getUpdates holds
	// the response headers until an update arrives or the timeout expires.
	pollSlack = 10 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls. pollTimeout is
// the long-poll timeout (zero for webhook mode). The client makes a single
// attempt per call: sends are retried by the dispatcher and the poller
// simply polls again.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	wait := max(pollTimeout, 0) + pollSlack
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   handshakeTimeout,
		ResponseHeaderTimeout: wait,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{Timeout: wait + dialTimeout + handshakeTimeout, Transport: transport}
}
