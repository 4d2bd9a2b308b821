package providers

import (
	"context"
	"fmt"
	"time"
)

// RemoteClient defines the interface for the POS vendor API
type RemoteClient interface {
	// FetchEntities fetches a page of remote entities of one type
	FetchEntities(ctx context.Context, accountID string, entityType string, filters *FetchFilters) (*EntitySet, error)

	// FetchEntity fetches a single remote entity by its remote ID
	FetchEntity(ctx context.Context, accountID string, entityType string, remoteID string) (*RemoteEntity, error)

	// PushEntity creates or updates a remote entity and returns the stored version
	PushEntity(ctx context.Context, accountID string, entityType string, entity *RemoteEntity) (*RemoteEntity, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// RemoteEntity is one object fetched from or pushed to the POS
type RemoteEntity struct {
	ID        string                 // Provider-specific object ID
	Key       string                 // Natural key used for first-time matching (name, email, reference)
	UpdatedAt time.Time              // Last modification time reported by the provider
	Fields    map[string]interface{} // Normalized fields keyed by internal names
}

// EntitySet is a paginated set of remote entities
type EntitySet struct {
	Entities []RemoteEntity
	Cursor   string // Pagination cursor for the next page
	HasMore  bool
}

// FetchFilters narrows a FetchEntities call
type FetchFilters struct {
	Cursor        string
	Limit         int
	ModifiedSince *time.Time // Fetch only objects modified after this
}

// TokenSource resolves the access token for an account
type TokenSource interface {
	AccessToken(ctx context.Context, accountID string) (string, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
