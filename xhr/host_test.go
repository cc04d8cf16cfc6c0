package xhr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

func TestNetHost(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(http.StatusCreated, http.Header{"X-Test": {"yes"}}, []byte("created")),
	)

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		client, err := New(Config{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}

		resp, err := client.Fetch(server.URL+"/things", Options{
			Method:  "PUT",
			Headers: map[string]string{"X-Key": "abc"},
			Body:    []byte("payload"),
		})
		if err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}

		if resp.Status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.Status)
		}
		if string(resp.Body) != "created" {
			t.Fatalf("expected body created, got %q", resp.Body)
		}
		if resp.Headers.Get("X-Test") != "yes" {
			t.Fatalf("expected X-Test header, got %v", resp.Headers)
		}

		info := <-requests
		if info.Request.Method != "PUT" || info.Request.URL.Path != "/things" {
			t.Fatalf("unexpected request %s %s", info.Request.Method, info.Request.URL.Path)
		}
		if info.Request.Header.Get("X-Key") != "abc" {
			t.Fatalf("expected X-Key header to be forwarded")
		}
		if string(info.Body) != "payload" {
			t.Fatalf("expected body payload, got %q", info.Body)
		}
	})
}

func TestNetHostConnectionFailure(t *testing.T) {
	var url string
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		url = server.URL
	})

	client, _ := New(Config{Timeout: time.Second})
	_, err := client.Fetch(url, Options{})
	if !errors.Is(err, ErrHostError) {
		t.Fatalf("expected host error for closed server, got %v", err)
	}
}
