package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prepflow/possync/internal/constants"
)

type staticTokenSource struct {
	token string
	err   error
}

func (s staticTokenSource) AccessToken(ctx context.Context, accountID string) (string, error) {
	return s.token, s.err
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*SquareProvider, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewSquareProvider(staticTokenSource{token: "test-token"})
	provider.BaseURL = server.URL
	return provider, server
}

func TestFetchEntities_CatalogPage(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]interface{}

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"objects": [
				{
					"id": "SQ_R1",
					"updated_at": "2026-02-01T10:00:00Z",
					"item_data": {
						"name": "Margherita",
						"variations": [
							{"item_variation_data": {"price_money": {"amount": 1250, "currency": "USD"}}}
						]
					}
				}
			],
			"cursor": "next-page"
		}`))
	})

	set, err := provider.FetchEntities(context.Background(), "acct-1", constants.EntityTypeRecipe, &FetchFilters{Limit: 50})
	if err != nil {
		t.Fatalf("FetchEntities failed: %v", err)
	}

	if gotPath != "/v2/catalog/search" {
		t.Errorf("Expected catalog search path, got %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotPayload["limit"] != float64(50) {
		t.Errorf("Expected limit in payload, got %v", gotPayload["limit"])
	}

	if len(set.Entities) != 1 {
		t.Fatalf("Expected 1 entity, got %d", len(set.Entities))
	}
	e := set.Entities[0]
	if e.ID != "SQ_R1" || e.Key != "margherita" {
		t.Errorf("Unexpected entity identity: %+v", e)
	}
	if e.Fields["price_cents"] != int64(1250) {
		t.Errorf("Expected price 1250, got %v", e.Fields["price_cents"])
	}
	if !set.HasMore || set.Cursor != "next-page" {
		t.Errorf("Expected pagination to continue, got HasMore=%v Cursor=%q", set.HasMore, set.Cursor)
	}
}

func TestFetchEntities_ModifiedSinceFilter(t *testing.T) {
	var gotPayload map[string]interface{}

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_, _ = w.Write([]byte(`{"orders": []}`))
	})

	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := provider.FetchEntities(context.Background(), "acct-1", constants.EntityTypeSale, &FetchFilters{ModifiedSince: &since})
	if err != nil {
		t.Fatalf("FetchEntities failed: %v", err)
	}

	if gotPayload["begin_time"] != "2026-02-01T00:00:00Z" {
		t.Errorf("Expected begin_time filter, got %v", gotPayload["begin_time"])
	}
}

func TestFetchEntities_StaffDecoding(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"team_members": [
				{
					"id": "SQ_TM1",
					"updated_at": "2026-02-01T10:00:00Z",
					"given_name": "Jamie",
					"family_name": "Cook",
					"email_address": "Jamie@Example.com",
					"status": "ACTIVE"
				}
			]
		}`))
	})

	set, err := provider.FetchEntities(context.Background(), "acct-1", constants.EntityTypeStaff, nil)
	if err != nil {
		t.Fatalf("FetchEntities failed: %v", err)
	}

	if len(set.Entities) != 1 {
		t.Fatalf("Expected 1 team member, got %d", len(set.Entities))
	}
	e := set.Entities[0]
	if e.Key != "jamie@example.com" {
		t.Errorf("Staff natural key should be the lowercased email, got %q", e.Key)
	}
	if e.Fields["name"] != "Jamie Cook" || e.Fields["is_active"] != true {
		t.Errorf("Unexpected staff fields: %+v", e.Fields)
	}
	if set.HasMore {
		t.Error("Missing cursor should end pagination")
	}
}

func TestDoRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, constants.ErrCodeAuthExpired},
		{http.StatusForbidden, constants.ErrCodeInvalidToken},
		{http.StatusNotFound, constants.ErrCodeNotFound},
		{http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{http.StatusInternalServerError, constants.ErrCodeNetworkError},
		{http.StatusUnprocessableEntity, constants.ErrCodeRemoteRejected},
	}

	for _, tt := range tests {
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"errors": [{"detail": "nope"}]}`))
		})

		_, err := provider.FetchEntities(context.Background(), "acct-1", constants.EntityTypeRecipe, nil)
		if err == nil {
			t.Fatalf("Status %d: expected an error", tt.status)
		}

		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("Status %d: expected ProviderError, got %T", tt.status, err)
		}
		if provErr.Code != tt.wantCode {
			t.Errorf("Status %d: expected code %s, got %s", tt.status, tt.wantCode, provErr.Code)
		}
	}
}

func TestDoRequest_TokenFailure(t *testing.T) {
	provider := NewSquareProvider(staticTokenSource{err: errors.New("no token stored")})

	_, err := provider.FetchEntities(context.Background(), "acct-1", constants.EntityTypeRecipe, nil)

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeInvalidToken {
		t.Fatalf("Expected INVALID_TOKEN provider error, got %v", err)
	}
}

func TestPushEntity_CatalogCreateUsesPlaceholderID(t *testing.T) {
	var gotPayload map[string]interface{}

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_, _ = w.Write([]byte(`{
			"catalog_object": {
				"id": "SQ_NEW_9",
				"updated_at": "2026-02-01T12:00:00Z",
				"item_data": {"name": "Carbonara"}
			}
		}`))
	})

	pushed, err := provider.PushEntity(context.Background(), "acct-1", constants.EntityTypeRecipe, &RemoteEntity{
		Fields: map[string]interface{}{"name": "Carbonara", "price_cents": int64(1400)},
	})
	if err != nil {
		t.Fatalf("PushEntity failed: %v", err)
	}

	if gotPayload["idempotency_key"] == "" || gotPayload["idempotency_key"] == nil {
		t.Error("Catalog upserts must carry an idempotency key")
	}
	obj, _ := gotPayload["object"].(map[string]interface{})
	id, _ := obj["id"].(string)
	if !strings.HasPrefix(id, "#") {
		t.Errorf("New objects need a client placeholder ID, got %q", id)
	}

	if pushed.ID != "SQ_NEW_9" {
		t.Errorf("Expected the stored remote ID, got %q", pushed.ID)
	}
}

func TestPushEntity_SalesAreRejected(t *testing.T) {
	provider := NewSquareProvider(staticTokenSource{token: "test-token"})

	_, err := provider.PushEntity(context.Background(), "acct-1", constants.EntityTypeSale, &RemoteEntity{})

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeRemoteRejected {
		t.Fatalf("Expected sales push rejection, got %v", err)
	}
}
