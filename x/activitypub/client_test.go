package activitypub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetch(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/activity+json")
		io.WriteString(w, `{
			"id": "https://remote.example/u/bob",
			"type": "Person",
			"inbox": "https://remote.example/u/bob/inbox",
			"preferredUsername": "bob"
		}`)
	}))
	defer server.Close()

	client := NewClient()
	object, err := client.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, "application/activity+json", gotAccept)
	assert.Equal(t, "https://remote.example/u/bob", object.ID)
	assert.Equal(t, "https://remote.example/u/bob/inbox", object.Inbox)
	assert.Equal(t, "bob", object.PreferredUsername)
}

func TestFetchRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestFetchNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>nope</html>")
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestDeliverSendsExactBytes(t *testing.T) {
	var (
		gotBody   []byte
		gotHost   string
		gotDigest string
		gotUA     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHost = r.Host
		gotDigest = r.Header.Get("Digest")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	body := []byte(`{"type":"Follow"}`)
	headers := http.Header{}
	headers.Set("Host", "remote.example")
	headers.Set("Digest", "SHA-256=abc")
	headers.Set("User-Agent", "StrawberryFields-Echo/2.8.0 (+https://fields.example/)")

	client := NewClient()
	err := client.Deliver(context.Background(), server.URL, body, headers)
	assert.NoError(t, err)
	assert.Equal(t, body, gotBody)
	assert.Equal(t, "remote.example", gotHost)
	assert.Equal(t, "SHA-256=abc", gotDigest)
	assert.Equal(t, "StrawberryFields-Echo/2.8.0 (+https://fields.example/)", gotUA)
}

func TestDeliverNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient()
	err := client.Deliver(context.Background(), server.URL, []byte(`{}`), http.Header{})
	assert.Error(t, err)
}
