package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const (
	pingTimeout         = 5 * time.Second
	defaultPublicBase   = "https://storage.googleapis.com"
	publicCacheControl  = "public, max-age=31536000"
	errBucketNotDefined = "gcs bucket not configured"
)

// Client uploads publicly readable objects to a single bucket.
type Client struct {
	svc        *storage.Service
	bucket     string
	publicBase string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds a storage client. Credentials come from the inline JSON,
// then the credentials file, then application default credentials. Extra
// options are appended last so tests can point at a fake endpoint.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.DevstorageReadWriteScope)}
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	opts = append(opts, extra...)

	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = defaultPublicBase
	}

	client := &Client{svc: svc, bucket: cfg.BucketName, publicBase: base}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}
	return client, nil
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Ping checks the bucket is visible with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	if c.bucket == "" {
		return errors.New(errBucketNotDefined)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.svc.Buckets.Get(c.bucket).Context(ctx).Do(); err != nil {
		return fmt.Errorf("get bucket %q: %w", c.bucket, err)
	}
	return nil
}

// Upload streams r into object and returns its permanent public URL.
func (c *Client) Upload(ctx context.Context, object, contentType string, r io.Reader) (string, error) {
	if c == nil || c.svc == nil {
		return "", errors.New("gcs client not initialized")
	}
	object = strings.TrimLeft(object, "/")
	if object == "" {
		return "", errors.New("object name is required")
	}

	meta := &storage.Object{
		Name:         object,
		ContentType:  contentType,
		CacheControl: publicCacheControl,
	}
	if _, err := c.svc.Objects.Insert(c.bucket, meta).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("upload %q: %w", object, err)
	}
	return c.PublicURL(object), nil
}

// Delete removes object. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, object string) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	err := c.svc.Objects.Delete(c.bucket, object).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %q: %w", object, err)
	}
	return nil
}

// PublicURL is the browser-facing address of object.
func (c *Client) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucket, escapeObject(object))
}

// ObjectFromURL reverses PublicURL. It reports false for URLs that do not
// point into this bucket, such as images hosted elsewhere.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", c.publicBase, c.bucket)
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	object, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || object == "" {
		return "", false
	}
	return object, true
}

func escapeObject(object string) string {
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
