package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig contains configuration for an S3-compatible document bucket
type BucketConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Extension       string `yaml:"extension"`
}

// Bucket reads one document per object. Identifiers are object keys.
type Bucket struct {
	client *minio.Client
	cfg    BucketConfig
}

// NewBucket creates a MinIO client for cfg. The bucket must already exist.
func NewBucket(cfg BucketConfig) (*Bucket, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket source: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	return &Bucket{client: client, cfg: cfg}, nil
}

// List returns the keys directly under the prefix that carry the extension.
func (b *Bucket) List(ctx context.Context) ([]string, error) {
	exists, err := b.client.BucketExists(ctx, b.cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", b.cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", b.cfg.Bucket)
	}

	var keys []string
	for obj := range b.client.ListObjects(ctx, b.cfg.Bucket, minio.ListObjectsOptions{Prefix: b.cfg.Prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", b.cfg.Bucket, b.cfg.Prefix, obj.Err)
		}
		if matchKey(obj.Key, b.cfg.Prefix, b.cfg.Extension) {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Open streams the object stored under id.
func (b *Bucket) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.cfg.Bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key here rather than on Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// matchKey mirrors the directory glob: only objects at the prefix level,
// with the extension.
func matchKey(key, prefix, ext string) bool {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ext) {
		return false
	}
	rest := strings.TrimPrefix(key, prefix)
	rest = strings.TrimPrefix(rest, "/")
	return rest != "" && !strings.Contains(rest, "/") && rest != ext
}
