package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Document one stored record; Data holds JSON-compatible values
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Listener receives the full record set of a collection
type Listener func(docs []Document)

// Unsubscribe stops a live query
type Unsubscribe func()

// Store is a document store with live queries. Collections are addressed by
// their full path, see CollectionPath. Missing ids yield common.ErrNotFound;
// connection failures yield a common.TransportError.
type Store interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	// Update merges data into an existing document
	Update(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Merge upserts: fields merge into the document, which is created if absent
	Merge(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe invokes fn with the current record set, then again after every
	// change. fn runs on the store's delivery path and must not write to the store.
	Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error)
	Ping(ctx context.Context) error
	Close() error
}

// CollectionPath scopes a collection under an application id
func CollectionPath(appID, collection string) string {
	return fmt.Sprintf("artifacts/%s/public/data/%s", strings.TrimSpace(appID), collection)
}

// cloneFields deep-copies data through its JSON form so every backend stores the same value shapes
func cloneFields(data map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	delete(out, "id")
	return out, nil
}

// mergeFields overlays patch onto base
func mergeFields(base, patch map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
