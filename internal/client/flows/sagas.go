package flows

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/store"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

// Service is the slice of the API client the sagas call.
type Service interface {
	SetToken(token string)

	Register(ctx context.Context, req api.RegisterRequest) (*types.User, api.Result)
	Login(ctx context.Context, email, password string) (*api.TokenPair, api.Result)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, api.Result)
	Logout(ctx context.Context) api.Result
	Me(ctx context.Context) (*types.User, api.Result)
	UpdateMe(ctx context.Context, fields api.ProfileFields) (*types.User, api.Result)

	ListSpaces(ctx context.Context) ([]*types.Space, api.Result)
	GetSpace(ctx context.Context, id uuid.UUID) (*types.Space, []*types.Grid, api.Result)
	CreateSpace(ctx context.Context, fields api.SpaceFields) (*types.Space, api.Result)
	UpdateSpace(ctx context.Context, id uuid.UUID, fields api.SpaceFields) (*types.Space, api.Result)
	DeleteSpace(ctx context.Context, id uuid.UUID) api.Result
	UploadSpaceImage(ctx context.Context, id uuid.UUID, file api.File) (*types.Space, api.Result)

	ListGrids(ctx context.Context, spaceID uuid.UUID) ([]*types.Grid, api.Result)
	CreateGrid(ctx context.Context, spaceID uuid.UUID, fields api.GridFields) (*types.Grid, api.Result)
	UpdateGrid(ctx context.Context, id uuid.UUID, fields api.GridFields) (*types.Grid, api.Result)
	DeleteGrid(ctx context.Context, id uuid.UUID) api.Result

	ListItems(ctx context.Context, q api.ItemQuery) ([]*types.Item, api.Result)
	GetItem(ctx context.Context, id uuid.UUID) (*types.Item, api.Result)
	CreateItem(ctx context.Context, fields api.ItemFields) (*types.Item, api.Result)
	UpdateItem(ctx context.Context, id uuid.UUID, fields api.ItemFields) (*types.Item, api.Result)
	DeleteItem(ctx context.Context, id uuid.UUID) api.Result
	UploadItemImage(ctx context.Context, id uuid.UUID, file api.File) (*types.Item, api.Result)

	Search(ctx context.Context, q api.SearchQuery) ([]*types.Item, api.Result)
	Reminders(ctx context.Context, within time.Duration) ([]*types.Item, api.Result)
}

var _ Service = (*api.Client)(nil)

type Effects = store.Effects[RootState]

type sagas struct {
	svc Service
}

// Run registers every saga on s.
func Run(s *store.Store[RootState], svc Service) {
	sg := &sagas{svc: svc}
	watch := map[string]store.Handler[RootState]{
		ItemFetchList:   sg.fetchItems,
		ItemFetchOne:    sg.fetchItem,
		ItemCreate:      sg.createItem,
		ItemUpdate:      sg.updateItem,
		ItemDelete:      sg.deleteItem,
		ItemUploadImage: sg.uploadItemImage,

		SpaceFetchList:   sg.fetchSpaces,
		SpaceFetchOne:    sg.fetchSpace,
		SpaceCreate:      sg.createSpace,
		SpaceUpdate:      sg.updateSpace,
		SpaceDelete:      sg.deleteSpace,
		SpaceUploadImage: sg.uploadSpaceImage,

		GridFetchList: sg.fetchGrids,
		GridCreate:    sg.createGrid,
		GridUpdate:    sg.updateGrid,
		GridDelete:    sg.deleteGrid,

		SearchRun:         sg.search,
		ReminderFetchList: sg.fetchReminders,

		AuthLogin:    sg.login,
		AuthLogout:   sg.logout,
		AuthRegister: sg.register,
		AuthFetchMe:  sg.fetchMe,
		AuthUpdateMe: sg.updateMe,
		AuthRefresh:  sg.refresh,
	}
	for typ, h := range watch {
		s.TakeEvery(typ, h)
	}
}

// finish records a mutation outcome and reports whether it succeeded.
func (sg *sagas) finish(fx Effects, e Entity, kind EditKind, res api.Result, payload any) bool {
	st := EditStatus{Done: true, IsSuccess: res.IsSuccess, Kind: kind, Message: res.Message}
	if res.IsSuccess {
		st.Payload = payload
	}
	fx.Put(SetEditStatus(e, st))
	sg.unauthorized(fx, res)
	return res.IsSuccess
}

func (sg *sagas) listFailed(fx Effects, e Entity, res api.Result) {
	fx.Put(ListFailed(e, res.Message))
	sg.unauthorized(fx, res)
}

// unauthorized ends the session when the backend rejected the access token.
func (sg *sagas) unauthorized(fx Effects, res api.Result) bool {
	if res.Status != http.StatusUnauthorized {
		return false
	}
	sg.svc.SetToken("")
	fx.Put(AuthCleared(res.Message))
	return true
}

func badPayload(fx Effects, e Entity, kind EditKind, a store.Action) {
	fx.Put(SetEditStatus(e, EditStatus{
		Done:    true,
		Kind:    kind,
		Message: fmt.Sprintf("%s: unexpected payload %T", a.Type, a.Payload),
	}))
}

// items

func (sg *sagas) fetchItems(fx Effects, a store.Action) {
	q, _ := a.Payload.(api.ItemQuery)
	fx.Put(SetPageLoading(EntityItem, true))
	items, res := sg.svc.ListItems(fx.Context(), q)
	if !res.IsSuccess {
		sg.listFailed(fx, EntityItem, res)
		return
	}
	fx.Put(ListLoaded(EntityItem, items))
}

func (sg *sagas) fetchItem(fx Effects, a store.Action) {
	id, ok := a.Payload.(uuid.UUID)
	if !ok {
		fx.Put(ListFailed(EntityItem, "missing item id"))
		return
	}
	fx.Put(SetPageLoading(EntityItem, true))
	item, res := sg.svc.GetItem(fx.Context(), id)
	if !res.IsSuccess {
		sg.listFailed(fx, EntityItem, res)
		return
	}
	fx.Put(SelectEntity(EntityItem, item))
}

// refreshItems re-runs the last listing, or lists the given space when
// nothing has been listed yet.
func (sg *sagas) refreshItems(fx Effects, spaceID uuid.UUID) {
	scope := fx.Select().Item.Scope
	if scope == (api.ItemQuery{}) && spaceID != uuid.Nil {
		scope.SpaceID = &spaceID
	}
	fx.Put(FetchItems(scope))
}

func itemSpace(item *types.Item) uuid.UUID {
	if item == nil {
		return uuid.Nil
	}
	return item.SpaceID
}

func (sg *sagas) createItem(fx Effects, a store.Action) {
	fields, ok := a.Payload.(api.ItemFields)
	if !ok {
		badPayload(fx, EntityItem, EditCreate, a)
		return
	}
	fx.Put(SetPageLoading(EntityItem, true))
	item, res := sg.svc.CreateItem(fx.Context(), fields)
	if sg.finish(fx, EntityItem, EditCreate, res, item) {
		sg.refreshItems(fx, itemSpace(item))
	}
}

func (sg *sagas) updateItem(fx Effects, a store.Action) {
	req, ok := a.Payload.(IDFields[api.ItemFields])
	if !ok {
		badPayload(fx, EntityItem, EditUpdate, a)
		return
	}
	fx.Put(SetPageLoading(EntityItem, true))
	item, res := sg.svc.UpdateItem(fx.Context(), req.ID, req.Fields)
	if sg.finish(fx, EntityItem, EditUpdate, res, item) {
		sg.refreshItems(fx, itemSpace(item))
	}
}

func (sg *sagas) deleteItem(fx Effects, a store.Action) {
	id, ok := a.Payload.(uuid.UUID)
	if !ok {
		badPayload(fx, EntityItem, EditDelete, a)
		return
	}
	fx.Put(SetPageLoading(EntityItem, true))
	res := sg.svc.DeleteItem(fx.Context(), id)
	if sg.finish(fx, EntityItem, EditDelete, res, id) {
		sg.refreshItems(fx, uuid.Nil)
	}
}

func (sg *sagas) uploadItemImage(fx Effects, a store.Action) {
	up, ok := a.Payload.(ImageUpload)
	if !ok {
		badPayload(fx, EntityItem, EditUpload, a)
		return
	}
	fx.Put(SetPageLoading(EntityItem, true))
	item, res := sg.svc.UploadItemImage(fx.Context(), up.ID, up.File)
	if sg.finish(fx, EntityItem, EditUpload, res, item) {
		sg.refreshItems(fx, itemSpace(item))
	}
}

// spaces

func (sg *sagas) fetchSpaces(fx Effects, a store.Action) {
	fx.Put(SetPageLoading(EntitySpace, true))
	spaces, res := sg.svc.ListSpaces(fx.Context())
	if !res.IsSuccess {
		sg.listFailed(fx, EntitySpace, res)
		return
	}
	fx.Put(ListLoaded(EntitySpace, spaces))
}

func (sg *sagas) fetchSpace(fx Effects, a store.Action) {
	id, ok := a.Payload.(uuid.UUID)
	if !ok {
		fx.Put(ListFailed(EntitySpace, "missing space id"))
		return
	}
	fx.Put(SetPageLoading(EntitySpace, true))
	space, grids, res := sg.svc.GetSpace(fx.Context(), id)
	if !res.IsSuccess {
		sg.listFailed(fx, EntitySpace, res)
		return
	}
	fx.Put(SelectEntity(EntitySpace, SpaceDetail{Space: space, Grids: grids}))
}

func (sg *sagas) createSpace(fx Effects, a store.Action) {
	fields, ok := a.Payload.(api.SpaceFields)
	if !ok {
		badPayload(fx, EntitySpace, EditCreate, a)
		return
	}
	fx.Put(SetPageLoading(EntitySpace, true))
	space, res := sg.svc.CreateSpace(fx.Context(), fields)
	if sg.finish(fx, EntitySpace, EditCreate, res, space) {
		fx.Put(FetchSpaces())
	}
}

func (sg *sagas) updateSpace(fx Effects, a store.Action) {
	req, ok := a.Payload.(IDFields[api.SpaceFields])
	if !ok {
		badPayload(fx, EntitySpace, EditUpdate, a)
		return
	}
	fx.Put(SetPageLoading(EntitySpace, true))
	space, res := sg.svc.UpdateSpace(fx.Context(), req.ID, req.Fields)
	if sg.finish(fx, EntitySpace, EditUpdate, res, space) {
		fx.Put(FetchSpaces())
	}
}

func (sg *sagas) deleteSpace(fx Effects, a store.Action) {
	id, ok := a.Payload.(uuid.UUID)
	if !ok {
		badPayload(fx, EntitySpace, EditDelete, a)
		return
	}
	fx.Put(SetPageLoading(EntitySpace, true))
	res := sg.svc.DeleteSpace(fx.Context(), id)
	if sg.finish(fx, EntitySpace, EditDelete, res, id) {
		fx.Put(FetchSpaces())
	}
}

func (sg *sagas) uploadSpaceImage(fx Effects, a store.Action) {
	up, ok := a.Payload.(ImageUpload)
	if !ok {
		badPayload(fx, EntitySpace, EditUpload, a)
		return
	}
	fx.Put(SetPageLoading(EntitySpace, true))
	space, res := sg.svc.UploadSpaceImage(fx.Context(), up.ID, up.File)
	if sg.finish(fx, EntitySpace, EditUpload, res, space) {
		fx.Put(FetchSpaces())
	}
}

// grids

func (sg *sagas) fetchGrids(fx Effects, a store.Action) {
	spaceID, ok := a.Payload.(uuid.UUID)
	if !ok {
		fx.Put(ListFailed(EntityGrid, "missing space id"))
		return
	}
	fx.Put(SetPageLoading(EntityGrid, true))
	grids, res := sg.svc.ListGrids(fx.Context(), spaceID)
	if !res.IsSuccess {
		sg.listFailed(fx, EntityGrid, res)
		return
	}
	fx.Put(ListLoaded(EntityGrid, GridList{SpaceID: spaceID, Grids: grids}))
}

func (sg *sagas) refreshGrids(fx Effects, spaceID uuid.UUID) {
	if spaceID == uuid.Nil {
		spaceID = fx.Select().Grid.SpaceID
	}
	if spaceID != uuid.Nil {
		fx.Put(FetchGrids(spaceID))
	}
}

func (sg *sagas) createGrid(fx Effects, a store.Action) {
	req, ok := a.Payload.(GridCreateRequest)
	if !ok {
		badPayload(fx, EntityGrid, EditCreate, a)
		return
	}
	fx.Put(SetPageLoading(EntityGrid, true))
	grid, res := sg.svc.CreateGrid(fx.Context(), req.SpaceID, req.Fields)
	if sg.finish(fx, EntityGrid, EditCreate, res, grid) {
		sg.refreshGrids(fx, req.SpaceID)
	}
}

func (sg *sagas) updateGrid(fx Effects, a store.Action) {
	req, ok := a.Payload.(IDFields[api.GridFields])
	if !ok {
		badPayload(fx, EntityGrid, EditUpdate, a)
		return
	}
	fx.Put(SetPageLoading(EntityGrid, true))
	grid, res := sg.svc.UpdateGrid(fx.Context(), req.ID, req.Fields)
	if sg.finish(fx, EntityGrid, EditUpdate, res, grid) {
		var spaceID uuid.UUID
		if grid != nil {
			spaceID = grid.SpaceID
		}
		sg.refreshGrids(fx, spaceID)
	}
}

func (sg *sagas) deleteGrid(fx Effects, a store.Action) {
	id, ok := a.Payload.(uuid.UUID)
	if !ok {
		badPayload(fx, EntityGrid, EditDelete, a)
		return
	}
	fx.Put(SetPageLoading(EntityGrid, true))
	res := sg.svc.DeleteGrid(fx.Context(), id)
	if sg.finish(fx, EntityGrid, EditDelete, res, id) {
		sg.refreshGrids(fx, uuid.Nil)
	}
}

// search and reminders

func (sg *sagas) search(fx Effects, a store.Action) {
	q, _ := a.Payload.(api.SearchQuery)
	items, res := sg.svc.Search(fx.Context(), q)
	if !res.IsSuccess {
		sg.listFailed(fx, EntitySearch, res)
		return
	}
	fx.Put(SearchResults(items))
}

func (sg *sagas) fetchReminders(fx Effects, a store.Action) {
	within, _ := a.Payload.(time.Duration)
	items, res := sg.svc.Reminders(fx.Context(), within)
	if !res.IsSuccess {
		sg.listFailed(fx, EntityReminder, res)
		return
	}
	fx.Put(ListLoaded(EntityReminder, items))
}

// auth

func (sg *sagas) login(fx Effects, a store.Action) {
	creds, _ := a.Payload.(Credentials)
	fx.Put(SetPageLoading(EntityAuth, true))
	pair, res := sg.svc.Login(fx.Context(), creds.Email, creds.Password)
	if !res.IsSuccess {
		fx.Put(AuthFailed(res.Message))
		return
	}
	sg.svc.SetToken(pair.AccessToken)
	fx.Put(AuthSucceeded(pair))
	fx.Put(FetchMe())
}

// logout clears the session even when the backend call fails.
func (sg *sagas) logout(fx Effects, a store.Action) {
	res := sg.svc.Logout(fx.Context())
	sg.svc.SetToken("")
	msg := "logged out"
	if !res.IsSuccess {
		msg = res.Message
	}
	fx.Put(AuthCleared(msg))
}

func (sg *sagas) register(fx Effects, a store.Action) {
	req, ok := a.Payload.(api.RegisterRequest)
	if !ok {
		badPayload(fx, EntityAuth, EditCreate, a)
		return
	}
	fx.Put(SetPageLoading(EntityAuth, true))
	user, res := sg.svc.Register(fx.Context(), req)
	sg.finish(fx, EntityAuth, EditCreate, res, user)
}

func (sg *sagas) fetchMe(fx Effects, a store.Action) {
	user, res := sg.svc.Me(fx.Context())
	if res.IsSuccess {
		fx.Put(UserLoaded(user))
		return
	}
	if !sg.unauthorized(fx, res) {
		fx.Put(AuthFailed(res.Message))
	}
}

func (sg *sagas) updateMe(fx Effects, a store.Action) {
	fields, ok := a.Payload.(api.ProfileFields)
	if !ok {
		badPayload(fx, EntityAuth, EditUpdate, a)
		return
	}
	fx.Put(SetPageLoading(EntityAuth, true))
	user, res := sg.svc.UpdateMe(fx.Context(), fields)
	if sg.finish(fx, EntityAuth, EditUpdate, res, user) {
		fx.Put(UserLoaded(user))
	}
}

// refresh trades the stored refresh token for a new pair; a rejected
// refresh token ends the session.
func (sg *sagas) refresh(fx Effects, a store.Action) {
	token := fx.Select().Auth.RefreshToken
	if token == "" {
		fx.Put(AuthFailed("no refresh token"))
		return
	}
	pair, res := sg.svc.Refresh(fx.Context(), token)
	if !res.IsSuccess {
		if !sg.unauthorized(fx, res) {
			fx.Put(AuthFailed(res.Message))
		}
		return
	}
	sg.svc.SetToken(pair.AccessToken)
	fx.Put(AuthSucceeded(pair))
}
