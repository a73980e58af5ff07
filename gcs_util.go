package godatabend

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStageConfig locates an external GCS stage and holds the service account
// key used for V4 signing.
type GCSStageConfig struct {
	Bucket         string
	Prefix         string
	GoogleAccessID string
	PrivateKey     []byte // PEM encoded
	// Hostname overrides storage.googleapis.com, e.g. for an emulator.
	Hostname string
	// Insecure signs http URLs; only meaningful with Hostname.
	Insecure bool
}

// GCSPresigner presigns stage object requests with V4 signed URLs.
type GCSPresigner struct {
	cfg GCSStageConfig
	now func() time.Time
	// client is set when signing with a credentials file instead of a key.
	client *storage.Client
}

var _ StagePresigner = (*GCSPresigner)(nil)

// NewGCSPresigner creates a presigner from a service account key.
func NewGCSPresigner(cfg GCSStageConfig) *GCSPresigner {
	return &GCSPresigner{cfg: cfg, now: time.Now}
}

// NewGCSPresignerFromCredentialsFile creates a presigner that signs with the
// service account in a JSON credentials file. GoogleAccessID and PrivateKey of
// cfg are ignored. Close releases the storage client.
func NewGCSPresignerFromCredentialsFile(ctx context.Context, cfg GCSStageConfig, credentialsFile string) (*GCSPresigner, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, &DatabendError{
			Number:      ErrCodeFailedToPresign,
			Message:     "failed to load gcs credentials from %v",
			MessageArgs: []interface{}{credentialsFile},
			Cause:       err,
		}
	}
	cfg.GoogleAccessID, cfg.PrivateKey = "", nil
	return &GCSPresigner{cfg: cfg, now: time.Now, client: client}, nil
}

// Close releases the storage client of a presigner built from a credentials file.
func (p *GCSPresigner) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// PresignUpload signs a PUT of the object.
func (p *GCSPresigner) PresignUpload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	return p.presign(http.MethodPut, key, expires)
}

// PresignDownload signs a GET of the object.
func (p *GCSPresigner) PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	return p.presign(http.MethodGet, key, expires)
}

func (p *GCSPresigner) presign(method string, key string, expires time.Duration) (*PresignedRequest, error) {
	key = objectKey(p.cfg.Prefix, key)
	opts := &storage.SignedURLOptions{
		GoogleAccessID: p.cfg.GoogleAccessID,
		PrivateKey:     p.cfg.PrivateKey,
		Method:         method,
		Expires:        p.now().Add(presignExpiry(expires)),
		Scheme:         storage.SigningSchemeV4,
		Style:          storage.PathStyle(),
		Hostname:       p.cfg.Hostname,
		Insecure:       p.cfg.Insecure,
	}
	var signed string
	var err error
	if p.client != nil {
		// the bucket handle takes the access id and key from the credentials
		signed, err = p.client.Bucket(p.cfg.Bucket).SignedURL(key, opts)
	} else {
		signed, err = storage.SignedURL(p.cfg.Bucket, key, opts)
	}
	if err != nil {
		return nil, presignError(method, key, err)
	}
	return &PresignedRequest{Method: method, URL: signed, Headers: map[string]string{}}, nil
}
