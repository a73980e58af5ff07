package godatabend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// AzureStageConfig locates an external Azure Blob stage and holds the
// storage account key used to sign service SAS tokens.
type AzureStageConfig struct {
	AccountName string
	AccountKey  string // base64, as shown in the portal
	Container   string
	Prefix      string
	// Endpoint overrides https://<account>.blob.core.windows.net, e.g. for Azurite.
	Endpoint string
}

// AzurePresigner presigns stage object requests with blob service SAS URLs.
type AzurePresigner struct {
	cred     *azblob.SharedKeyCredential
	cfg      AzureStageConfig
	endpoint string
	now      func() time.Time
}

var _ StagePresigner = (*AzurePresigner)(nil)

// NewAzurePresigner creates a presigner from a shared key.
func NewAzurePresigner(cfg AzureStageConfig) (*AzurePresigner, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, presignError("SAS", cfg.Container, err)
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}
	return &AzurePresigner{cred: cred, cfg: cfg, endpoint: endpoint, now: time.Now}, nil
}

// PresignUpload signs a Put Blob of a block blob. The returned headers carry
// the mandatory x-ms-blob-type.
func (p *AzurePresigner) PresignUpload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	perms := sas.BlobPermissions{Create: true, Write: true}
	req, err := p.presign(http.MethodPut, key, expires, perms)
	if err != nil {
		return nil, err
	}
	req.Headers["X-Ms-Blob-Type"] = "BlockBlob"
	return req, nil
}

// PresignDownload signs a Get Blob.
func (p *AzurePresigner) PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	return p.presign(http.MethodGet, key, expires, sas.BlobPermissions{Read: true})
}

func (p *AzurePresigner) presign(method string, key string, expires time.Duration, perms sas.BlobPermissions) (*PresignedRequest, error) {
	key = objectKey(p.cfg.Prefix, key)
	protocol := sas.ProtocolHTTPS
	if strings.HasPrefix(p.endpoint, "http://") {
		protocol = sas.ProtocolHTTPSandHTTP
	}
	now := p.now().UTC()
	qp, err := sas.BlobSignatureValues{
		Protocol:      protocol,
		StartTime:     now.Add(-5 * time.Minute),
		ExpiryTime:    now.Add(presignExpiry(expires)),
		Permissions:   perms.String(),
		ContainerName: p.cfg.Container,
		BlobName:      key,
	}.SignWithSharedKey(p.cred)
	if err != nil {
		return nil, presignError(method, key, err)
	}
	blobURL := p.endpoint + "/" + url.PathEscape(p.cfg.Container) + "/" + escapeBlobName(key) + "?" + qp.Encode()
	return &PresignedRequest{Method: method, URL: blobURL, Headers: map[string]string{}}, nil
}

func escapeBlobName(name string) string {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
