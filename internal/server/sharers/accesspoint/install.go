package accesspoint

import (
	"context"
	"sort"
)

// DocumentPutter saves one generated document into the template bucket.
type DocumentPutter interface {
	PutDocument(ctx context.Context, bucket, key, contentType string, body []byte) error
}

// SaveDocuments uploads every document of a generation, nested documents
// first so the root's TemplateURLs resolve by the time it is installed.
func SaveDocuments(ctx context.Context, store DocumentPutter, bucket string, gen *Generation) error {
	keys := make([]string, 0, len(gen.Documents))
	for key := range gen.Documents {
		if key != gen.RootDocumentKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	keys = append(keys, gen.RootDocumentKey)

	for _, key := range keys {
		if err := store.PutDocument(ctx, bucket, key, "application/json", gen.Documents[key]); err != nil {
			return err
		}
	}
	return nil
}
