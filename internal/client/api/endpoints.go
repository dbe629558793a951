package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ProfileFields struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// SpaceFields serves both create and update; nil fields are left out.
type SpaceFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Rows        *int    `json:"rows,omitempty"`
	Cols        *int    `json:"cols,omitempty"`
}

type GridFields struct {
	Name    *string `json:"name,omitempty"`
	Row     *int    `json:"row,omitempty"`
	Col     *int    `json:"col,omitempty"`
	RowSpan *int    `json:"row_span,omitempty"`
	ColSpan *int    `json:"col_span,omitempty"`
	Color   *string `json:"color,omitempty"`
}

type ItemFields struct {
	SpaceID       *uuid.UUID `json:"space_id,omitempty"`
	GridID        *uuid.UUID `json:"grid_id,omitempty"`
	ClearGrid     bool       `json:"clear_grid,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	ReminderAt    *time.Time `json:"reminder_at,omitempty"`
	ReminderNote  *string    `json:"reminder_note,omitempty"`
	ClearReminder bool       `json:"clear_reminder,omitempty"`
}

// ItemQuery scopes an item listing. The zero value lists every item.
type ItemQuery struct {
	SpaceID  *uuid.UUID
	GridID   *uuid.UUID
	Unplaced bool
	Category string
}

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	if q.SpaceID != nil {
		v.Set("space_id", q.SpaceID.String())
	}
	if q.GridID != nil {
		v.Set("grid_id", q.GridID.String())
	}
	if q.Unplaced {
		v.Set("unplaced", "true")
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

type SearchQuery struct {
	Text     string
	SpaceID  *uuid.UUID
	Category string
	Limit    int
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.SpaceID != nil {
		v.Set("space_id", q.SpaceID.String())
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// auth

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*types.User, Result) {
	var out types.User
	res := decodeInto(c.Post(ctx, "/api/register", req), "user", &out)
	return &out, res
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, Result) {
	var out TokenPair
	res := decodeInto(c.Post(ctx, "/api/login", map[string]string{"email": email, "password": password}), "", &out)
	return &out, res
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, Result) {
	var out TokenPair
	res := decodeInto(c.Post(ctx, "/api/refresh", map[string]string{"refresh_token": refreshToken}), "", &out)
	return &out, res
}

func (c *Client) Logout(ctx context.Context) Result {
	return c.Post(ctx, "/api/logout", nil)
}

func (c *Client) Me(ctx context.Context) (*types.User, Result) {
	var out types.User
	res := decodeInto(c.Get(ctx, "/api/me", nil), "me", &out)
	return &out, res
}

func (c *Client) UpdateMe(ctx context.Context, fields ProfileFields) (*types.User, Result) {
	var out types.User
	res := decodeInto(c.Patch(ctx, "/api/me", fields), "me", &out)
	return &out, res
}

// spaces

func (c *Client) ListSpaces(ctx context.Context) ([]*types.Space, Result) {
	var out []*types.Space
	res := decodeInto(c.Get(ctx, "/api/spaces", nil), "spaces", &out)
	return out, res
}

func (c *Client) GetSpace(ctx context.Context, id uuid.UUID) (*types.Space, []*types.Grid, Result) {
	res := c.Get(ctx, "/api/spaces/"+id.String(), nil)
	var space types.Space
	var grids []*types.Grid
	res = decodeInto(res, "space", &space)
	res = decodeInto(res, "grids", &grids)
	return &space, grids, res
}

func (c *Client) CreateSpace(ctx context.Context, fields SpaceFields) (*types.Space, Result) {
	var out types.Space
	res := decodeInto(c.Post(ctx, "/api/spaces", fields), "space", &out)
	return &out, res
}

func (c *Client) UpdateSpace(ctx context.Context, id uuid.UUID, fields SpaceFields) (*types.Space, Result) {
	var out types.Space
	res := decodeInto(c.Put(ctx, "/api/spaces/"+id.String(), fields), "space", &out)
	return &out, res
}

func (c *Client) DeleteSpace(ctx context.Context, id uuid.UUID) Result {
	return c.Delete(ctx, "/api/spaces/"+id.String())
}

func (c *Client) UploadSpaceImage(ctx context.Context, id uuid.UUID, file File) (*types.Space, Result) {
	var out types.Space
	res := decodeInto(c.Upload(ctx, "/api/spaces/"+id.String()+"/image", nil, map[string]File{ImageField: file}), "space", &out)
	return &out, res
}

// grids

func (c *Client) ListGrids(ctx context.Context, spaceID uuid.UUID) ([]*types.Grid, Result) {
	var out []*types.Grid
	res := decodeInto(c.Get(ctx, "/api/spaces/"+spaceID.String()+"/grids", nil), "grids", &out)
	return out, res
}

func (c *Client) CreateGrid(ctx context.Context, spaceID uuid.UUID, fields GridFields) (*types.Grid, Result) {
	var out types.Grid
	res := decodeInto(c.Post(ctx, "/api/spaces/"+spaceID.String()+"/grids", fields), "grid", &out)
	return &out, res
}

func (c *Client) UpdateGrid(ctx context.Context, id uuid.UUID, fields GridFields) (*types.Grid, Result) {
	var out types.Grid
	res := decodeInto(c.Put(ctx, "/api/grids/"+id.String(), fields), "grid", &out)
	return &out, res
}

func (c *Client) DeleteGrid(ctx context.Context, id uuid.UUID) Result {
	return c.Delete(ctx, "/api/grids/"+id.String())
}

// items

func (c *Client) ListItems(ctx context.Context, q ItemQuery) ([]*types.Item, Result) {
	var out []*types.Item
	res := decodeInto(c.Get(ctx, "/api/items", q.values()), "items", &out)
	return out, res
}

func (c *Client) GetItem(ctx context.Context, id uuid.UUID) (*types.Item, Result) {
	var out types.Item
	res := decodeInto(c.Get(ctx, "/api/items/"+id.String(), nil), "item", &out)
	return &out, res
}

func (c *Client) CreateItem(ctx context.Context, fields ItemFields) (*types.Item, Result) {
	var out types.Item
	res := decodeInto(c.Post(ctx, "/api/items", fields), "item", &out)
	return &out, res
}

func (c *Client) UpdateItem(ctx context.Context, id uuid.UUID, fields ItemFields) (*types.Item, Result) {
	var out types.Item
	res := decodeInto(c.Put(ctx, "/api/items/"+id.String(), fields), "item", &out)
	return &out, res
}

func (c *Client) DeleteItem(ctx context.Context, id uuid.UUID) Result {
	return c.Delete(ctx, "/api/items/"+id.String())
}

func (c *Client) UploadItemImage(ctx context.Context, id uuid.UUID, file File) (*types.Item, Result) {
	var out types.Item
	res := decodeInto(c.Upload(ctx, "/api/items/"+id.String()+"/image", nil, map[string]File{ImageField: file}), "item", &out)
	return &out, res
}

// search and reminders

func (c *Client) Search(ctx context.Context, q SearchQuery) ([]*types.Item, Result) {
	var out []*types.Item
	res := decodeInto(c.Get(ctx, "/api/search", q.values()), "items", &out)
	return out, res
}

func (c *Client) Reminders(ctx context.Context, within time.Duration) ([]*types.Item, Result) {
	v := url.Values{}
	if within > 0 {
		v.Set("within", within.String())
	}
	var out []*types.Item
	res := decodeInto(c.Get(ctx, "/api/reminders", v), "items", &out)
	return out, res
}

// ImageField is the multipart field the backend reads uploads from.
const ImageField = "image"
