package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"prepflow/possync/internal/constants"
)

const defaultSquareBaseURL = "https://connect.squareup.com"

// SquareProvider implements RemoteClient for the Square API
type SquareProvider struct {
	BaseURL string
	Client  *http.Client
	tokens  TokenSource

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// Ensure SquareProvider implements RemoteClient
var _ RemoteClient = (*SquareProvider)(nil)

// NewSquareProvider creates a new Square provider
func NewSquareProvider(tokens TokenSource) *SquareProvider {
	baseURL := os.Getenv("SQUARE_BASE_URL")
	if baseURL == "" {
		baseURL = defaultSquareBaseURL
	}

	return &SquareProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:   tokens,
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetProviderType returns the provider type identifier
func (p *SquareProvider) GetProviderType() string {
	return "square"
}

// limiter returns the per-account rate limiter, creating it on first use.
// Square allows bursts but throttles sustained traffic per token.
func (p *SquareProvider) limiter(accountID string) *rate.Limiter {
	p.limitersMu.Lock()
	defer p.limitersMu.Unlock()

	if l, exists := p.limiters[accountID]; exists {
		return l
	}
	l := rate.NewLimiter(rate.Limit(10), 20)
	p.limiters[accountID] = l
	return l
}

// FetchEntities fetches a page of remote entities of one type
func (p *SquareProvider) FetchEntities(ctx context.Context, accountID string, entityType string, filters *FetchFilters) (*EntitySet, error) {
	payload := p.buildSearchPayload(entityType, filters)

	path, err := searchPath(entityType)
	if err != nil {
		return nil, err
	}

	body, err := p.doRequest(ctx, accountID, "POST", path, payload)
	if err != nil {
		return nil, err
	}

	switch entityType {
	case constants.EntityTypeRecipe, constants.EntityTypeDish:
		var resp squareCatalogSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode catalog response: %w", err)
		}
		entities := make([]RemoteEntity, 0, len(resp.Objects))
		for _, obj := range resp.Objects {
			entities = append(entities, obj.toRemoteEntity())
		}
		return &EntitySet{Entities: entities, Cursor: resp.Cursor, HasMore: resp.Cursor != ""}, nil

	case constants.EntityTypeStaff:
		var resp squareTeamSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode team response: %w", err)
		}
		entities := make([]RemoteEntity, 0, len(resp.TeamMembers))
		for _, tm := range resp.TeamMembers {
			entities = append(entities, tm.toRemoteEntity())
		}
		return &EntitySet{Entities: entities, Cursor: resp.Cursor, HasMore: resp.Cursor != ""}, nil

	case constants.EntityTypeSale:
		var resp squareOrderSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode orders response: %w", err)
		}
		entities := make([]RemoteEntity, 0, len(resp.Orders))
		for _, o := range resp.Orders {
			entities = append(entities, o.toRemoteEntity())
		}
		return &EntitySet{Entities: entities, Cursor: resp.Cursor, HasMore: resp.Cursor != ""}, nil
	}

	return nil, fmt.Errorf("unknown entity type: %s", entityType)
}

// FetchEntity fetches a single remote entity by its remote ID
func (p *SquareProvider) FetchEntity(ctx context.Context, accountID string, entityType string, remoteID string) (*RemoteEntity, error) {
	var path string
	switch entityType {
	case constants.EntityTypeRecipe, constants.EntityTypeDish:
		path = fmt.Sprintf("/v2/catalog/object/%s", remoteID)
	case constants.EntityTypeStaff:
		path = fmt.Sprintf("/v2/team-members/%s", remoteID)
	case constants.EntityTypeSale:
		path = fmt.Sprintf("/v2/orders/%s", remoteID)
	default:
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	body, err := p.doRequest(ctx, accountID, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	switch entityType {
	case constants.EntityTypeRecipe, constants.EntityTypeDish:
		var resp struct {
			Object squareCatalogObject `json:"object"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode catalog object: %w", err)
		}
		e := resp.Object.toRemoteEntity()
		return &e, nil
	case constants.EntityTypeStaff:
		var resp struct {
			TeamMember squareTeamMember `json:"team_member"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode team member: %w", err)
		}
		e := resp.TeamMember.toRemoteEntity()
		return &e, nil
	default:
		var resp struct {
			Order squareOrder `json:"order"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		e := resp.Order.toRemoteEntity()
		return &e, nil
	}
}

// PushEntity creates or updates a remote entity and returns the stored version
func (p *SquareProvider) PushEntity(ctx context.Context, accountID string, entityType string, entity *RemoteEntity) (*RemoteEntity, error) {
	switch entityType {
	case constants.EntityTypeRecipe, constants.EntityTypeDish:
		payload := map[string]interface{}{
			"idempotency_key": uuid.NewString(),
			"object":          catalogObjectFromFields(entity),
		}
		body, err := p.doRequest(ctx, accountID, "POST", "/v2/catalog/object", payload)
		if err != nil {
			return nil, err
		}
		var resp struct {
			CatalogObject squareCatalogObject `json:"catalog_object"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode upsert response: %w", err)
		}
		e := resp.CatalogObject.toRemoteEntity()
		return &e, nil

	case constants.EntityTypeStaff:
		tm := teamMemberFromFields(entity)
		var (
			body []byte
			err  error
		)
		if entity.ID == "" {
			payload := map[string]interface{}{
				"idempotency_key": uuid.NewString(),
				"team_member":     tm,
			}
			body, err = p.doRequest(ctx, accountID, "POST", "/v2/team-members", payload)
		} else {
			payload := map[string]interface{}{"team_member": tm}
			body, err = p.doRequest(ctx, accountID, "PUT", fmt.Sprintf("/v2/team-members/%s", entity.ID), payload)
		}
		if err != nil {
			return nil, err
		}
		var resp struct {
			TeamMember squareTeamMember `json:"team_member"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode team member response: %w", err)
		}
		e := resp.TeamMember.toRemoteEntity()
		return &e, nil

	case constants.EntityTypeSale:
		// Sales are pull-only. The orchestrator never schedules a sale push.
		return nil, &ProviderError{
			Code:    constants.ErrCodeRemoteRejected,
			Message: "sales cannot be pushed to Square",
		}
	}

	return nil, fmt.Errorf("unknown entity type: %s", entityType)
}

// doRequest executes one authenticated request against the Square API
func (p *SquareProvider) doRequest(ctx context.Context, accountID string, method string, path string, payload interface{}) ([]byte, error) {
	token, err := p.tokens.AccessToken(ctx, accountID)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidToken),
			Err:     err,
		}
	}

	if err := p.limiter(accountID).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := p.handleHTTPError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// handleHTTPError maps Square HTTP statuses onto the error taxonomy
func (p *SquareProvider) handleHTTPError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &ProviderError{
			Code:    constants.ErrCodeAuthExpired,
			Message: constants.GetErrorMessage(constants.ErrCodeAuthExpired),
			Details: string(body),
		}
	case status == http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidToken),
			Details: string(body),
		}
	case status == http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeNotFound),
			Details: string(body),
		}
	case status == http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: string(body),
		}
	case status >= 500:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d from Square", status),
			Details: string(body),
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeRemoteRejected,
			Message: fmt.Sprintf("HTTP %d: %s", status, string(body)),
			Details: string(body),
		}
	}
}

// buildSearchPayload builds the request payload for fetching entities
func (p *SquareProvider) buildSearchPayload(entityType string, filters *FetchFilters) map[string]interface{} {
	payload := make(map[string]interface{})

	if entityType == constants.EntityTypeRecipe || entityType == constants.EntityTypeDish {
		payload["object_types"] = []string{"ITEM"}
	}

	if filters != nil {
		if filters.Cursor != "" {
			payload["cursor"] = filters.Cursor
		}
		if filters.Limit > 0 {
			payload["limit"] = filters.Limit
		}
		if filters.ModifiedSince != nil {
			payload["begin_time"] = filters.ModifiedSince.UTC().Format(time.RFC3339)
		}
	}

	return payload
}

func searchPath(entityType string) (string, error) {
	switch entityType {
	case constants.EntityTypeRecipe, constants.EntityTypeDish:
		return "/v2/catalog/search", nil
	case constants.EntityTypeStaff:
		return "/v2/team-members/search", nil
	case constants.EntityTypeSale:
		return "/v2/orders/search", nil
	}
	return "", fmt.Errorf("unknown entity type: %s", entityType)
}

// Square API response structures

type squareCatalogSearchResponse struct {
	Objects []squareCatalogObject `json:"objects"`
	Cursor  string                `json:"cursor,omitempty"`
}

type squareCatalogObject struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted,omitempty"`
	ItemData  struct {
		Name       string `json:"name"`
		Category   string `json:"category_name,omitempty"`
		Variations []struct {
			ItemVariationData struct {
				PriceMoney struct {
					Amount   int64  `json:"amount"`
					Currency string `json:"currency"`
				} `json:"price_money"`
			} `json:"item_variation_data"`
		} `json:"variations"`
	} `json:"item_data"`
}

func (o squareCatalogObject) toRemoteEntity() RemoteEntity {
	var price int64
	if len(o.ItemData.Variations) > 0 {
		price = o.ItemData.Variations[0].ItemVariationData.PriceMoney.Amount
	}
	return RemoteEntity{
		ID:        o.ID,
		Key:       strings.ToLower(strings.TrimSpace(o.ItemData.Name)),
		UpdatedAt: o.UpdatedAt,
		Fields: map[string]interface{}{
			"name":        o.ItemData.Name,
			"price_cents": price,
			"category":    o.ItemData.Category,
			"is_active":   !o.IsDeleted,
		},
	}
}

func catalogObjectFromFields(e *RemoteEntity) map[string]interface{} {
	name, _ := e.Fields["name"].(string)
	price, _ := e.Fields["price_cents"].(int64)

	id := e.ID
	if id == "" {
		// Square treats a '#'-prefixed ID as a client-side placeholder
		id = "#" + uuid.NewString()
	}

	return map[string]interface{}{
		"id":   id,
		"type": "ITEM",
		"item_data": map[string]interface{}{
			"name": name,
			"variations": []map[string]interface{}{
				{
					"type": "ITEM_VARIATION",
					"item_variation_data": map[string]interface{}{
						"pricing_type": "FIXED_PRICING",
						"price_money": map[string]interface{}{
							"amount":   price,
							"currency": "USD",
						},
					},
				},
			},
		},
	}
}

type squareTeamSearchResponse struct {
	TeamMembers []squareTeamMember `json:"team_members"`
	Cursor      string             `json:"cursor,omitempty"`
}

type squareTeamMember struct {
	ID           string    `json:"id"`
	UpdatedAt    time.Time `json:"updated_at"`
	GivenName    string    `json:"given_name"`
	FamilyName   string    `json:"family_name"`
	EmailAddress string    `json:"email_address"`
	Status       string    `json:"status"`
}

func (tm squareTeamMember) toRemoteEntity() RemoteEntity {
	name := strings.TrimSpace(tm.GivenName + " " + tm.FamilyName)
	key := strings.ToLower(tm.EmailAddress)
	if key == "" {
		key = strings.ToLower(name)
	}
	return RemoteEntity{
		ID:        tm.ID,
		Key:       key,
		UpdatedAt: tm.UpdatedAt,
		Fields: map[string]interface{}{
			"name":      name,
			"email":     tm.EmailAddress,
			"is_active": tm.Status == "ACTIVE",
		},
	}
}

func teamMemberFromFields(e *RemoteEntity) map[string]interface{} {
	name, _ := e.Fields["name"].(string)
	email, _ := e.Fields["email"].(string)

	given, family := name, ""
	if idx := strings.LastIndex(name, " "); idx > 0 {
		given, family = name[:idx], name[idx+1:]
	}

	status := "ACTIVE"
	if active, ok := e.Fields["is_active"].(bool); ok && !active {
		status = "INACTIVE"
	}

	return map[string]interface{}{
		"given_name":    given,
		"family_name":   family,
		"email_address": email,
		"status":        status,
	}
}

type squareOrderSearchResponse struct {
	Orders []squareOrder `json:"orders"`
	Cursor string        `json:"cursor,omitempty"`
}

type squareOrder struct {
	ID         string    `json:"id"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedAt  time.Time `json:"created_at"`
	TotalMoney struct {
		Amount int64 `json:"amount"`
	} `json:"total_money"`
}

func (o squareOrder) toRemoteEntity() RemoteEntity {
	return RemoteEntity{
		ID:        o.ID,
		Key:       strings.ToLower(o.ID),
		UpdatedAt: o.UpdatedAt,
		Fields: map[string]interface{}{
			"reference":   o.ID,
			"total_cents": o.TotalMoney.Amount,
			"sold_at":     o.CreatedAt,
		},
	}
}

// EnvTokenSource reads a single token from the environment. Used for local
// development and single-tenant deployments.
type EnvTokenSource struct{}

func (EnvTokenSource) AccessToken(ctx context.Context, accountID string) (string, error) {
	token := os.Getenv("SQUARE_ACCESS_TOKEN")
	if token == "" {
		return "", fmt.Errorf("SQUARE_ACCESS_TOKEN not set")
	}
	return token, nil
}
