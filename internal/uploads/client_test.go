package uploads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSignedUploadURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/object/upload/sign/listing-images/photo.jpg", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		json.NewEncoder(w).Encode(map[string]string{"signedUrl": "https://signed.example/put"})
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "secret"}
	url, err := c.CreateSignedUploadURL(context.Background(), "listing-images", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/put", url)
}

func TestCreateSignedUploadURL_RelativeURLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "object/upload/sign/listing-images/photo.jpg?token=x"})
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "secret"}
	url, err := c.CreateSignedUploadURL(context.Background(), "listing-images", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/object/upload/sign/listing-images/photo.jpg?token=x", url)
}

func TestCreateSignedUploadURL_DoesNotMutateSharedClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signedUrl": "https://signed.example/put"})
	}))
	defer srv.Close()

	// One instance is wired into the handler and shared across requests, so
	// the default http.Client fallback must stay local to the call.
	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "secret"}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateSignedUploadURL(context.Background(), "listing-images", "photo.jpg")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Nil(t, c.Client)
}

func TestCreateSignedUploadURL_WrongKeyHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid Compact JWS"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "anon-key"}
	_, err := c.CreateSignedUploadURL(context.Background(), "listing-images", "photo.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service_role")
}
