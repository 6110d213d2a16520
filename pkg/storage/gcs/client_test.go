package gcs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeGCS struct {
	mu      sync.Mutex
	objects map[string]string
	deletes []string
}

func (f *fakeGCS) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/b/products-bucket"):
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "products-bucket"})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/b/"):
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/b/products-bucket/o"):
			body, _ := io.ReadAll(r.Body)
			name := r.URL.Query().Get("name")
			if name == "" {
				// multipart uploads carry the name in the JSON part
				idx := strings.Index(string(body), `"name":"`)
				if idx >= 0 {
					rest := string(body)[idx+len(`"name":"`):]
					name = rest[:strings.Index(rest, `"`)]
				}
			}
			f.objects[name] = string(body)
			_ = json.NewEncoder(w).Encode(map[string]any{"name": name, "bucket": "products-bucket"})
		case r.Method == http.MethodDelete:
			parts := strings.SplitN(r.URL.Path, "/o/", 2)
			name := ""
			if len(parts) == 2 {
				name = parts[1]
			}
			f.deletes = append(f.deletes, name)
			if _, ok := f.objects[name]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
				return
			}
			delete(f.objects, name)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Logf("unexpected request %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func newTestClient(t *testing.T, bucket string) (*Client, *fakeGCS, error) {
	t.Helper()
	fake := &fakeGCS{objects: map[string]string{}}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(),
		config.GCSConfig{BucketName: bucket},
		config.GCPConfig{},
		nil,
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	return client, fake, err
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCSConfig{}, config.GCPConfig{}, nil)
	require.Error(t, err)
}

func TestNewClientFailsWhenBucketMissing(t *testing.T) {
	_, _, err := newTestClient(t, "missing-bucket")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gcs health check failed")
}

func TestUploadReturnsPublicURL(t *testing.T) {
	client, fake, err := newTestClient(t, "products-bucket")
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), "products/abc/main.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://storage.googleapis.com/products-bucket/products/abc/main.png", url)

	fake.mu.Lock()
	stored, ok := fake.objects["products/abc/main.png"]
	fake.mu.Unlock()
	require.True(t, ok, "object should be uploaded")
	require.Contains(t, stored, "png-bytes")

	object, ok := client.ObjectFromURL(url)
	require.True(t, ok)
	require.Equal(t, "products/abc/main.png", object)
}

func TestDeleteToleratesMissingObject(t *testing.T) {
	client, fake, err := newTestClient(t, "products-bucket")
	require.NoError(t, err)

	require.NoError(t, client.Delete(context.Background(), "never-uploaded.png"))
	require.Len(t, fake.deletes, 1)
}

func TestObjectFromURLIgnoresForeignHosts(t *testing.T) {
	client := &Client{bucket: "products-bucket", publicBase: defaultPublicBase}
	_, ok := client.ObjectFromURL("https://res.cloudinary.com/demo/image/upload/sample.jpg")
	require.False(t, ok)
	_, ok = client.ObjectFromURL("https://storage.googleapis.com/other-bucket/a.png")
	require.False(t, ok)
}

func TestPublicURLEscapesSegments(t *testing.T) {
	client := &Client{bucket: "b", publicBase: "https://cdn.example.com"}
	require.Equal(t, "https://cdn.example.com/b/categories/summer%20sale.png", client.PublicURL("categories/summer sale.png"))
}
