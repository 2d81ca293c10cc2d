package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeStorageProvider(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/storage/v1/object/IMAGES/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/storage/v1/object/IMAGES/"):]
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "true", r.Header.Get("x-upsert"))
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			objects[path] = data
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			if _, ok := objects[path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(objects, path)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/storage/v1/bucket", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{{"name": "IMAGES"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderStorageUpload(t *testing.T) {
	objects := map[string][]byte{}
	srv := newFakeStorageProvider(t, objects)
	storage := NewProviderStorage(srv.URL, testServiceKey, "IMAGES", time.Second)

	err := storage.Upload(context.Background(), "user-1/cat.png", []byte("cat bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []byte("cat bytes"), objects["user-1/cat.png"])

	// Upsert: same path overwrites.
	err = storage.Upload(context.Background(), "user-1/cat.png", []byte("newer cat"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []byte("newer cat"), objects["user-1/cat.png"])
}

func TestProviderStoragePublicURL(t *testing.T) {
	storage := NewProviderStorage("https://example.backend.co", testServiceKey, "IMAGES", time.Second)
	assert.Equal(t,
		"https://example.backend.co/storage/v1/object/public/IMAGES/user-1/cat.png",
		storage.PublicURL("user-1/cat.png"))
}

func TestProviderStorageRemove(t *testing.T) {
	objects := map[string][]byte{"user-1/cat.png": []byte("cat bytes")}
	srv := newFakeStorageProvider(t, objects)
	storage := NewProviderStorage(srv.URL, testServiceKey, "IMAGES", time.Second)

	require.NoError(t, storage.Remove(context.Background(), "user-1/cat.png"))
	assert.Empty(t, objects)

	assert.Error(t, storage.Remove(context.Background(), "user-1/cat.png"))
}

func TestProviderStorageListBuckets(t *testing.T) {
	srv := newFakeStorageProvider(t, map[string][]byte{})
	storage := NewProviderStorage(srv.URL, testServiceKey, "IMAGES", time.Second)

	names, err := storage.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"IMAGES"}, names)
}
