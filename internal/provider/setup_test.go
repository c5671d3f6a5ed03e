package provider

import (
	"net/http"
	"testing"

	"go.uber.org/goleak"
)

// goleakOptions returns standard goleak options for the adapter tests that
// exercise live HTTP paths. Idle-pool goroutines wind down asynchronously
// after CloseIdleConnections.
func goleakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	}
}

func verifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t, goleakOptions()...)
}

// testClient returns a client whose idle connections are torn down with the
// test.
func testClient(t *testing.T) *http.Client {
	t.Helper()

	client := NewHTTPClient()
	t.Cleanup(client.CloseIdleConnections)
	return client
}
