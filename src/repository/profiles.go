package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	app "profileserv/src/app"
)

type (
	// Profile is the one-row-per-user record in the hosted "profiles" table.
	// Field names mirror the table columns exactly ("Bio" is capitalized in
	// the schema).
	Profile struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Bio           string   `json:"Bio"`
		ProfilePicURL string   `json:"profilepic_url"`
		ImageURLs     []string `json:"imageurls"`
	}

	// ProfileDB is the profile store as seen by the HTTP layer. Partial
	// records are maps so that omitted columns stay untouched by the
	// provider's merge semantics.
	ProfileDB interface {
		// FetchProfile returns nil (not an error) when no row exists.
		FetchProfile(ctx context.Context, userID string) (*Profile, error)
		// UpsertProfile creates or merges the row keyed by partial["id"].
		UpsertProfile(ctx context.Context, partial map[string]any) error
		// UpdateProfile requires the row to exist and fails with
		// app.ErrNotFound otherwise.
		UpdateProfile(ctx context.Context, userID string, partial map[string]any) error
	}
)

// RestProfileDB talks to the provider's PostgREST-style table API with the
// privileged service key.
type RestProfileDB struct {
	rest *resty.Client
}

func NewRestProfileDB(baseURL, serviceKey string, timeout time.Duration) *RestProfileDB {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetTimeout(timeout)
	return &RestProfileDB{rest: rest}
}

func (db *RestProfileDB) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	rows := []Profile{}
	resp, err := db.rest.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+userID).
		SetQueryParam("select", "id,name,Bio,profilepic_url,imageurls").
		SetResult(&rows).
		Get("/profiles")
	if err != nil {
		return nil, fmt.Errorf("profile store unreachable: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("profile fetch rejected: %s: %s", resp.Status(), resp.String())
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (db *RestProfileDB) UpsertProfile(ctx context.Context, partial map[string]any) error {
	resp, err := db.rest.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(partial).
		Post("/profiles")
	if err != nil {
		return fmt.Errorf("profile store unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("profile upsert rejected: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (db *RestProfileDB) UpdateProfile(ctx context.Context, userID string, partial map[string]any) error {
	rows := []Profile{}
	resp, err := db.rest.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+userID).
		SetHeader("Prefer", "return=representation").
		SetBody(partial).
		SetResult(&rows).
		Patch("/profiles")
	if err != nil {
		return fmt.Errorf("profile store unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("profile update rejected: %s: %s", resp.Status(), resp.String())
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: no profile row for user %s", app.ErrNotFound, userID)
	}
	return nil
}

// InMemoryProfileDB keeps profiles in a map. It backs the handler tests and
// mirrors the provider's merge semantics for partial records.
type InMemoryProfileDB struct {
	mu    sync.Mutex
	table map[string]*Profile
}

func NewInMemoryProfileDB() *InMemoryProfileDB {
	return &InMemoryProfileDB{table: make(map[string]*Profile)}
}

func (db *InMemoryProfileDB) FetchProfile(_ context.Context, userID string) (*Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	row, ok := db.table[userID]
	if !ok {
		return nil, nil
	}
	clone := *row
	clone.ImageURLs = append([]string(nil), row.ImageURLs...)
	return &clone, nil
}

func (db *InMemoryProfileDB) UpsertProfile(_ context.Context, partial map[string]any) error {
	id, ok := partial["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("upsert without an id")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	row, ok := db.table[id]
	if !ok {
		row = &Profile{ID: id}
		db.table[id] = row
	}
	merge(row, partial)
	return nil
}

func (db *InMemoryProfileDB) UpdateProfile(_ context.Context, userID string, partial map[string]any) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	row, ok := db.table[userID]
	if !ok {
		return fmt.Errorf("%w: no profile row for user %s", app.ErrNotFound, userID)
	}
	merge(row, partial)
	return nil
}

func merge(row *Profile, partial map[string]any) {
	for column, value := range partial {
		switch column {
		case "name":
			row.Name, _ = value.(string)
		case "Bio":
			row.Bio, _ = value.(string)
		case "profilepic_url":
			row.ProfilePicURL, _ = value.(string)
		case "imageurls":
			if urls, ok := value.([]string); ok {
				row.ImageURLs = append([]string(nil), urls...)
			}
		}
	}
}
