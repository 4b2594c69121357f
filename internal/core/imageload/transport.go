package imageload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Transport retrieves the raw bytes behind an image reference.
type Transport interface {
	Get(ctx context.Context, ref string) ([]byte, error)
}

// HTTPTransport fetches images over HTTP(S).
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) Get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// S3Transport fetches images stored in an S3 compatible bucket. References
// take the form s3://bucket/key.
type S3Transport struct {
	client *minio.Client
}

// NewS3Transport connects to an S3 compatible endpoint.
func NewS3Transport(endpoint, accessKey, secretKey string, useSSL bool) (*S3Transport, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3Transport{client: client}, nil
}

func (t *S3Transport) Get(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return nil, err
	}

	obj, err := t.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// ParseS3Ref splits an s3://bucket/key reference.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("parse reference: %w", err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("reference %q must be s3://bucket/key", ref)
	}
	return bucket, key, nil
}

// MuxTransport dispatches references to a transport by URL scheme.
type MuxTransport struct {
	schemes map[string]Transport
}

// NewMuxTransport creates an empty mux.
func NewMuxTransport() *MuxTransport {
	return &MuxTransport{schemes: make(map[string]Transport)}
}

// Handle registers t for the given schemes.
func (m *MuxTransport) Handle(t Transport, schemes ...string) {
	for _, s := range schemes {
		m.schemes[strings.ToLower(s)] = t
	}
}

func (m *MuxTransport) Get(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}

	t, ok := m.schemes[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("no transport for scheme %q", u.Scheme)
	}
	return t.Get(ctx, ref)
}
