package service

import (
	"net/http"
	"time"
)

// outboundTimeout bounds every call to a third-party API. A timed-out
// provider call is reported as that provider's failure, never a crash.
const outboundTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: outboundTimeout}
}
