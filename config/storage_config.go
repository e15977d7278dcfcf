package config

import (
	"alertrelay/storage"
	"context"
)

// InitSnippetStore builds the blob store selected by SNIPPET_STORE.
func (c *Config) InitSnippetStore(ctx context.Context) (storage.BlobStore, error) {
	switch c.SnippetStore {
	case SnippetStoreMinio:
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  c.MinioEndpoint,
			AccessKey: c.MinioAccessKey,
			SecretKey: c.MinioSecretKey,
			Bucket:    c.MinioBucket,
			UseSSL:    c.MinioUseSSL,
		})
	default:
		return storage.NewLocalStore(c.SnippetsDir)
	}
}
