package flows

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/store"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

var okRes = api.Result{IsSuccess: true, Status: http.StatusOK}

func failed(status int, msg string) api.Result {
	return api.Result{Status: status, Message: msg}
}

// fakeService records calls; unimplemented methods panic through the nil
// embedded interface, which the runtime recovers.
type fakeService struct {
	Service

	mu      sync.Mutex
	calls   []string
	token   string
	spaces  []*types.Space
	items   []*types.Item
	queries []api.ItemQuery

	createItemRes api.Result
	deleteRes     api.Result
	loginRes      api.Result
	meRes         api.Result
	logoutRes     api.Result
	listItemsRes  api.Result
	refreshRes    api.Result

	gridLists     []uuid.UUID
	gridSpace     uuid.UUID
	refreshedWith string
	noBody        bool
}

func newFake() *fakeService {
	return &fakeService{createItemRes: okRes, deleteRes: okRes, loginRes: okRes, meRes: okRes, logoutRes: okRes, listItemsRes: okRes, refreshRes: okRes}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeService) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeService) ListSpaces(ctx context.Context) ([]*types.Space, api.Result) {
	f.record("ListSpaces")
	return f.spaces, okRes
}

func (f *fakeService) DeleteSpace(ctx context.Context, id uuid.UUID) api.Result {
	f.record("DeleteSpace")
	return f.deleteRes
}

func (f *fakeService) ListItems(ctx context.Context, q api.ItemQuery) ([]*types.Item, api.Result) {
	f.record("ListItems")
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if !f.listItemsRes.IsSuccess {
		return nil, f.listItemsRes
	}
	return f.items, f.listItemsRes
}

func (f *fakeService) CreateItem(ctx context.Context, fields api.ItemFields) (*types.Item, api.Result) {
	f.record("CreateItem")
	if !f.createItemRes.IsSuccess {
		return &types.Item{}, f.createItemRes
	}
	it := &types.Item{ID: uuid.New(), SpaceID: *fields.SpaceID, Name: *fields.Name}
	f.mu.Lock()
	f.items = append(append([]*types.Item(nil), f.items...), it)
	f.mu.Unlock()
	return it, f.createItemRes
}

func (f *fakeService) Login(ctx context.Context, email, password string) (*api.TokenPair, api.Result) {
	f.record("Login")
	return &api.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, f.loginRes
}

func (f *fakeService) Me(ctx context.Context) (*types.User, api.Result) {
	f.record("Me")
	return &types.User{Email: "ada@example.com"}, f.meRes
}

func (f *fakeService) Logout(ctx context.Context) api.Result {
	f.record("Logout")
	return f.logoutRes
}

func (f *fakeService) Search(ctx context.Context, q api.SearchQuery) ([]*types.Item, api.Result) {
	f.record("Search")
	return []*types.Item{{Name: q.Text}}, okRes
}

func (f *fakeService) UpdateItem(ctx context.Context, id uuid.UUID, fields api.ItemFields) (*types.Item, api.Result) {
	f.record("UpdateItem")
	if f.noBody {
		return nil, okRes
	}
	return &types.Item{ID: id, SpaceID: *fields.SpaceID}, okRes
}

func (f *fakeService) UploadItemImage(ctx context.Context, id uuid.UUID, file api.File) (*types.Item, api.Result) {
	f.record("UploadItemImage")
	if f.noBody {
		return nil, okRes
	}
	return &types.Item{ID: id, SpaceID: f.gridSpace, ImageURL: "https://img/" + file.Name}, okRes
}

func (f *fakeService) UploadSpaceImage(ctx context.Context, id uuid.UUID, file api.File) (*types.Space, api.Result) {
	f.record("UploadSpaceImage")
	return &types.Space{ID: id, ImageURL: "https://img/" + file.Name}, okRes
}

func (f *fakeService) ListGrids(ctx context.Context, spaceID uuid.UUID) ([]*types.Grid, api.Result) {
	f.record("ListGrids")
	f.mu.Lock()
	f.gridLists = append(f.gridLists, spaceID)
	f.mu.Unlock()
	return []*types.Grid{{ID: uuid.New(), SpaceID: spaceID}}, okRes
}

func (f *fakeService) GridLists() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.gridLists...)
}

func (f *fakeService) CreateGrid(ctx context.Context, spaceID uuid.UUID, fields api.GridFields) (*types.Grid, api.Result) {
	f.record("CreateGrid")
	return &types.Grid{ID: uuid.New(), SpaceID: spaceID, Name: *fields.Name}, okRes
}

func (f *fakeService) UpdateGrid(ctx context.Context, id uuid.UUID, fields api.GridFields) (*types.Grid, api.Result) {
	f.record("UpdateGrid")
	if f.noBody {
		return nil, okRes
	}
	return &types.Grid{ID: id, SpaceID: f.gridSpace}, okRes
}

func (f *fakeService) DeleteGrid(ctx context.Context, id uuid.UUID) api.Result {
	f.record("DeleteGrid")
	return f.deleteRes
}

func (f *fakeService) Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, api.Result) {
	f.record("Refresh")
	f.mu.Lock()
	f.refreshedWith = refreshToken
	f.mu.Unlock()
	if !f.refreshRes.IsSuccess {
		return nil, f.refreshRes
	}
	return &api.TokenPair{AccessToken: "rotated", RefreshToken: "rotated-refresh", ExpiresIn: 3600}, f.refreshRes
}

func (f *fakeService) UpdateMe(ctx context.Context, fields api.ProfileFields) (*types.User, api.Result) {
	f.record("UpdateMe")
	return &types.User{Email: "ada@example.com", FirstName: *fields.FirstName}, okRes
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRuntime(t *testing.T, svc Service) *store.Store[RootState] {
	t.Helper()
	s := store.New(RootState{}, RootReducer)
	Run(s, svc)
	t.Cleanup(s.Close)
	return s
}

func dispatchAndSettle(t *testing.T, s *store.Store[RootState], a store.Action) RootState {
	t.Helper()
	s.Dispatch(a)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Settle(ctx))
	return s.State()
}

func TestActionTypesAreNamespaced(t *testing.T) {
	assert.Equal(t, "item/FETCH_LIST", FetchItems(api.ItemQuery{}).Type)
	assert.Equal(t, "space/SET_LOADING", SetPageLoading(EntitySpace, true).Type)
	assert.Equal(t, "grid/EDIT_STATUS", SetEditStatus(EntityGrid, EditStatus{}).Type)
	assert.Equal(t, "auth/LOGIN", Login("a", "b").Type)
}

func TestFetchSpacesFlow(t *testing.T) {
	svc := newFake()
	svc.spaces = []*types.Space{{ID: uuid.New(), Name: "Garage"}}
	s := newRuntime(t, svc)

	var loading []bool
	s.Subscribe(func(st RootState, a store.Action) {
		if a.Type == EventType(EntitySpace, "SET_LOADING") || a.Type == EventType(EntitySpace, "LIST_LOADED") {
			loading = append(loading, st.Space.PageLoading)
		}
	})

	st := dispatchAndSettle(t, s, FetchSpaces())
	require.Len(t, st.Space.List, 1)
	assert.Equal(t, "Garage", st.Space.List[0].Name)
	assert.False(t, st.Space.PageLoading)
	assert.Equal(t, []bool{true, false}, loading)
}

func TestCreateItemRefreshesScopedList(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	spaceID := uuid.New()

	st := dispatchAndSettle(t, s, CreateItem(api.ItemFields{SpaceID: &spaceID, Name: ptr("Drill")}))

	assert.True(t, st.Item.EditStatus.Done)
	assert.True(t, st.Item.EditStatus.IsSuccess)
	assert.Equal(t, EditCreate, st.Item.EditStatus.Kind)
	require.Len(t, st.Item.List, 1)
	assert.Equal(t, "Drill", st.Item.List[0].Name)
	assert.Equal(t, []string{"CreateItem", "ListItems"}, svc.Calls())
	require.NotNil(t, st.Item.Scope.SpaceID)
	assert.Equal(t, spaceID, *st.Item.Scope.SpaceID)
}

func TestCreateItemKeepsExistingScope(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	spaceID := uuid.New()

	dispatchAndSettle(t, s, FetchItems(api.ItemQuery{Category: "tools"}))
	dispatchAndSettle(t, s, CreateItem(api.ItemFields{SpaceID: &spaceID, Name: ptr("Saw")}))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Len(t, svc.queries, 2)
	assert.Equal(t, "tools", svc.queries[1].Category)
	assert.Nil(t, svc.queries[1].SpaceID)
}

func TestFailedMutationSkipsRefresh(t *testing.T) {
	svc := newFake()
	svc.createItemRes = failed(http.StatusBadRequest, "name is required")
	s := newRuntime(t, svc)
	spaceID := uuid.New()

	st := dispatchAndSettle(t, s, CreateItem(api.ItemFields{SpaceID: &spaceID, Name: ptr("")}))
	assert.True(t, st.Item.EditStatus.Done)
	assert.False(t, st.Item.EditStatus.IsSuccess)
	assert.Equal(t, "name is required", st.Item.Message)
	assert.Equal(t, []string{"CreateItem"}, svc.Calls())
}

func TestFailedFetchKeepsPreviousList(t *testing.T) {
	svc := newFake()
	svc.items = []*types.Item{{Name: "Hammer"}}
	s := newRuntime(t, svc)

	dispatchAndSettle(t, s, FetchItems(api.ItemQuery{}))
	svc.listItemsRes = failed(http.StatusServiceUnavailable, "Service Unavailable")
	st := dispatchAndSettle(t, s, FetchItems(api.ItemQuery{}))

	require.Len(t, st.Item.List, 1)
	assert.Equal(t, "Service Unavailable", st.Item.Message)
	assert.False(t, st.Item.PageLoading)
}

func TestDeleteSpaceClearsSelection(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	id := uuid.New()

	s.Dispatch(SelectEntity(EntitySpace, SpaceDetail{Space: &types.Space{ID: id}}))
	st := dispatchAndSettle(t, s, DeleteSpace(id))

	assert.Nil(t, st.Space.Selected)
	assert.Equal(t, id, st.Space.EditStatus.Payload)
	assert.Equal(t, []string{"DeleteSpace", "ListSpaces"}, svc.Calls())
}

func TestLoginStoresTokenAndLoadsUser(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)

	st := dispatchAndSettle(t, s, Login("ada@example.com", "correct horse"))
	assert.True(t, st.Auth.LoggedIn)
	assert.Equal(t, "access", st.Auth.Token)
	assert.Equal(t, "refresh", st.Auth.RefreshToken)
	require.NotNil(t, st.Auth.User)
	assert.Equal(t, "ada@example.com", st.Auth.User.Email)
	assert.Equal(t, "access", svc.Token())
	assert.Equal(t, []string{"Login", "Me"}, svc.Calls())
}

func TestLoginFailure(t *testing.T) {
	svc := newFake()
	svc.loginRes = failed(http.StatusUnauthorized, "invalid credentials")
	s := newRuntime(t, svc)

	st := dispatchAndSettle(t, s, Login("ada@example.com", "nope"))
	assert.False(t, st.Auth.LoggedIn)
	assert.Equal(t, "invalid credentials", st.Auth.Message)
	assert.Empty(t, svc.Token())
}

func TestExpiredSessionIsCleared(t *testing.T) {
	svc := newFake()
	svc.meRes = failed(http.StatusUnauthorized, "token expired")
	s := newRuntime(t, svc)

	s.Dispatch(Restore("stale", "stale-refresh"))
	st := dispatchAndSettle(t, s, FetchMe())
	assert.False(t, st.Auth.LoggedIn)
	assert.Empty(t, st.Auth.Token)
	assert.Equal(t, "token expired", st.Auth.Message)
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	svc := newFake()
	svc.logoutRes = failed(0, "connection refused")
	s := newRuntime(t, svc)
	svc.SetToken("access")

	s.Dispatch(Restore("access", "refresh"))
	st := dispatchAndSettle(t, s, Logout())
	assert.False(t, st.Auth.LoggedIn)
	assert.Empty(t, st.Auth.Token)
	assert.Empty(t, svc.Token())
	assert.Equal(t, "connection refused", st.Auth.Message)
}

func TestSearchFlow(t *testing.T) {
	s := newRuntime(t, newFake())
	st := dispatchAndSettle(t, s, RunSearch(api.SearchQuery{Text: "drill"}))
	assert.True(t, st.Search.Done)
	assert.False(t, st.Search.Loading)
	assert.Equal(t, "drill", st.Search.Query.Text)
	require.Len(t, st.Search.Results, 1)
}

func TestUnimplementedCallDoesNotWedgeRuntime(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	// GetItem is not faked: the handler panics and the runtime moves on.
	dispatchAndSettle(t, s, FetchItem(uuid.New()))
	st := dispatchAndSettle(t, s, FetchSpaces())
	assert.False(t, st.Space.PageLoading)
	assert.Contains(t, svc.Calls(), "ListSpaces")
}

func TestBadPayloadRecordsFailure(t *testing.T) {
	s := newRuntime(t, newFake())
	st := dispatchAndSettle(t, s, store.Action{Type: ItemCreate, Payload: "oops"})
	assert.True(t, st.Item.EditStatus.Done)
	assert.False(t, st.Item.EditStatus.IsSuccess)
	assert.Contains(t, st.Item.EditStatus.Message, "unexpected payload")
}

func TestReducersDoNotMutateInput(t *testing.T) {
	before := RootState{}
	before = RootReducer(before, SetFormField(EntityItem, "name", "Drill"))
	snapshot := before.Item.Form

	after := RootReducer(before, SetFormField(EntityItem, "name", "Saw"))
	after = RootReducer(after, SetFormField(EntityItem, "category", "tools"))

	assert.Equal(t, map[string]string{"name": "Drill"}, snapshot)
	assert.Equal(t, map[string]string{"name": "Saw", "category": "tools"}, after.Item.Form)

	cleared := RootReducer(after, SetFormField(EntityItem, "category", ""))
	assert.Equal(t, map[string]string{"name": "Saw"}, cleared.Item.Form)
	assert.Nil(t, RootReducer(cleared, ResetForm(EntityItem)).Item.Form)
}

func TestEditStatusLifecycle(t *testing.T) {
	st := RootState{}
	grid := &types.Grid{ID: uuid.New(), Name: "Shelf"}
	st = RootReducer(st, SetFormField(EntityGrid, "name", "Shelf"))
	st = RootReducer(st, SetEditStatus(EntityGrid, EditStatus{Done: true, IsSuccess: true, Kind: EditCreate, Payload: grid}))
	assert.Equal(t, grid, st.Grid.Selected)
	assert.Nil(t, st.Grid.Form)

	st = RootReducer(st, ClearEditStatus(EntityGrid))
	assert.Equal(t, EditStatus{}, st.Grid.EditStatus)
}

func TestSpaceDetailFeedsGridSlice(t *testing.T) {
	space := &types.Space{ID: uuid.New(), Name: "Garage"}
	grids := []*types.Grid{{ID: uuid.New(), SpaceID: space.ID}}
	st := RootReducer(RootState{}, SelectEntity(EntitySpace, SpaceDetail{Space: space, Grids: grids}))
	assert.Equal(t, space.ID, st.Grid.SpaceID)
	assert.Len(t, st.Grid.List, 1)
	assert.Equal(t, space, st.Space.Selected)
}

func TestFormConversion(t *testing.T) {
	spaceID := uuid.New()
	f, err := ItemFieldsFromForm(map[string]string{
		"space_id":    spaceID.String(),
		"name":        "Drill",
		"tags":        "tools, power ,",
		"quantity":    "2",
		"reminder_at": "2026-03-01T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, spaceID, *f.SpaceID)
	assert.Equal(t, []string{"tools", "power"}, *f.Tags)
	assert.Equal(t, 2, *f.Quantity)
	assert.Nil(t, f.GridID)
	assert.Nil(t, f.Description)

	_, err = ItemFieldsFromForm(map[string]string{"quantity": "many"})
	assert.Error(t, err)

	g, err := GridFieldsFromForm(map[string]string{"row": "1", "col_span": "2"})
	require.NoError(t, err)
	assert.Equal(t, 1, *g.Row)
	assert.Equal(t, 2, *g.ColSpan)
	assert.Nil(t, g.Col)

	sp, err := SpaceFieldsFromForm(map[string]string{"name": "Garage", "rows": "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, *sp.Rows)
	assert.Nil(t, sp.Cols)
}

func TestUnauthorizedListingClearsSession(t *testing.T) {
	svc := newFake()
	svc.listItemsRes = failed(http.StatusUnauthorized, "token expired")
	s := newRuntime(t, svc)
	svc.SetToken("stale")

	s.Dispatch(Restore("stale", "stale-refresh"))
	st := dispatchAndSettle(t, s, FetchItems(api.ItemQuery{}))
	assert.False(t, st.Auth.LoggedIn)
	assert.Empty(t, st.Auth.Token)
	assert.Empty(t, st.Auth.RefreshToken)
	assert.Empty(t, svc.Token())
	assert.Equal(t, "token expired", st.Auth.Message)
	assert.Equal(t, "token expired", st.Item.Message)
	assert.False(t, st.Item.PageLoading)
}

func TestUnauthorizedMutationClearsSession(t *testing.T) {
	svc := newFake()
	svc.createItemRes = failed(http.StatusUnauthorized, "token expired")
	s := newRuntime(t, svc)
	svc.SetToken("stale")
	spaceID := uuid.New()

	s.Dispatch(Restore("stale", "stale-refresh"))
	st := dispatchAndSettle(t, s, CreateItem(api.ItemFields{SpaceID: &spaceID, Name: ptr("Drill")}))
	assert.True(t, st.Item.EditStatus.Done)
	assert.False(t, st.Item.EditStatus.IsSuccess)
	assert.False(t, st.Auth.LoggedIn)
	assert.Empty(t, svc.Token())
	assert.Equal(t, []string{"CreateItem"}, svc.Calls())
}

func TestOtherFailuresKeepSession(t *testing.T) {
	svc := newFake()
	svc.listItemsRes = failed(http.StatusServiceUnavailable, "Service Unavailable")
	s := newRuntime(t, svc)

	s.Dispatch(Restore("access", "refresh"))
	st := dispatchAndSettle(t, s, FetchItems(api.ItemQuery{}))
	assert.True(t, st.Auth.LoggedIn)
	assert.Equal(t, "access", st.Auth.Token)
}

func TestGridMutationsRefreshOwningSpace(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	first, second := uuid.New(), uuid.New()

	st := dispatchAndSettle(t, s, CreateGrid(first, api.GridFields{Name: ptr("Shelf")}))
	assert.True(t, st.Grid.EditStatus.IsSuccess)
	assert.Equal(t, EditCreate, st.Grid.EditStatus.Kind)
	assert.Equal(t, first, st.Grid.SpaceID)
	require.Len(t, st.Grid.List, 1)

	svc.gridSpace = second
	st = dispatchAndSettle(t, s, UpdateGrid(uuid.New(), api.GridFields{Row: ptr(2)}))
	assert.Equal(t, EditUpdate, st.Grid.EditStatus.Kind)
	assert.Equal(t, second, st.Grid.SpaceID)

	// Deletes return no body, so the refresh falls back to the listed space.
	st = dispatchAndSettle(t, s, DeleteGrid(uuid.New()))
	assert.Equal(t, EditDelete, st.Grid.EditStatus.Kind)
	assert.Equal(t, []uuid.UUID{first, second, second}, svc.GridLists())
	assert.Equal(t, []string{"CreateGrid", "ListGrids", "UpdateGrid", "ListGrids", "DeleteGrid", "ListGrids"}, svc.Calls())
}

func TestDeleteGridWithoutListedSpaceSkipsRefresh(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)

	st := dispatchAndSettle(t, s, DeleteGrid(uuid.New()))
	assert.True(t, st.Grid.EditStatus.IsSuccess)
	assert.Equal(t, []string{"DeleteGrid"}, svc.Calls())
}

func TestEmptySuccessBodyStillRefreshes(t *testing.T) {
	svc := newFake()
	svc.noBody = true
	s := newRuntime(t, svc)
	spaceID := uuid.New()

	dispatchAndSettle(t, s, FetchGrids(spaceID))
	st := dispatchAndSettle(t, s, UpdateGrid(uuid.New(), api.GridFields{Row: ptr(1)}))
	assert.True(t, st.Grid.EditStatus.IsSuccess)
	assert.Equal(t, []uuid.UUID{spaceID, spaceID}, svc.GridLists())

	st = dispatchAndSettle(t, s, UpdateItem(uuid.New(), api.ItemFields{Name: ptr("Saw")}))
	assert.True(t, st.Item.EditStatus.IsSuccess)
	dispatchAndSettle(t, s, UploadItemImage(uuid.New(), api.File{Name: "saw.jpg"}))
	assert.Equal(t, []string{"ListGrids", "UpdateGrid", "ListGrids", "UpdateItem", "ListItems", "UploadItemImage", "ListItems"}, svc.Calls())
}

func TestUploadItemImageRefreshesItsSpace(t *testing.T) {
	svc := newFake()
	svc.gridSpace = uuid.New()
	s := newRuntime(t, svc)

	st := dispatchAndSettle(t, s, UploadItemImage(uuid.New(), api.File{Name: "drill.jpg"}))
	assert.Equal(t, EditUpload, st.Item.EditStatus.Kind)
	require.True(t, st.Item.EditStatus.IsSuccess)
	item, ok := st.Item.EditStatus.Payload.(*types.Item)
	require.True(t, ok)
	assert.Equal(t, "https://img/drill.jpg", item.ImageURL)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Len(t, svc.queries, 1)
	require.NotNil(t, svc.queries[0].SpaceID)
	assert.Equal(t, svc.gridSpace, *svc.queries[0].SpaceID)
}

func TestUploadSpaceImageRefreshesSpaces(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)
	id := uuid.New()

	st := dispatchAndSettle(t, s, UploadSpaceImage(id, api.File{Name: "garage.png"}))
	assert.Equal(t, EditUpload, st.Space.EditStatus.Kind)
	space, ok := st.Space.EditStatus.Payload.(*types.Space)
	require.True(t, ok)
	assert.Equal(t, id, space.ID)
	assert.Equal(t, "https://img/garage.png", space.ImageURL)
	assert.Equal(t, []string{"UploadSpaceImage", "ListSpaces"}, svc.Calls())
}

func TestUpdateMeLoadsUser(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)

	s.Dispatch(Restore("access", "refresh"))
	st := dispatchAndSettle(t, s, UpdateMe(api.ProfileFields{FirstName: ptr("Ada")}))
	assert.True(t, st.Auth.EditStatus.IsSuccess)
	assert.Equal(t, EditUpdate, st.Auth.EditStatus.Kind)
	require.NotNil(t, st.Auth.User)
	assert.Equal(t, "Ada", st.Auth.User.FirstName)
	assert.True(t, st.Auth.LoggedIn)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)

	s.Dispatch(Restore("old", "old-refresh"))
	st := dispatchAndSettle(t, s, RefreshSession())
	assert.True(t, st.Auth.LoggedIn)
	assert.Equal(t, "rotated", st.Auth.Token)
	assert.Equal(t, "rotated-refresh", st.Auth.RefreshToken)
	assert.Equal(t, "rotated", svc.Token())

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, "old-refresh", svc.refreshedWith)
}

func TestRejectedRefreshEndsSession(t *testing.T) {
	svc := newFake()
	svc.refreshRes = failed(http.StatusUnauthorized, "refresh token revoked")
	s := newRuntime(t, svc)
	svc.SetToken("old")

	s.Dispatch(Restore("old", "old-refresh"))
	st := dispatchAndSettle(t, s, RefreshSession())
	assert.False(t, st.Auth.LoggedIn)
	assert.Empty(t, st.Auth.RefreshToken)
	assert.Empty(t, svc.Token())
	assert.Equal(t, "refresh token revoked", st.Auth.Message)
}

func TestRefreshOutageKeepsSession(t *testing.T) {
	svc := newFake()
	svc.refreshRes = failed(0, "connection refused")
	s := newRuntime(t, svc)

	s.Dispatch(Restore("old", "old-refresh"))
	st := dispatchAndSettle(t, s, RefreshSession())
	assert.True(t, st.Auth.LoggedIn)
	assert.Equal(t, "old", st.Auth.Token)
	assert.Equal(t, "connection refused", st.Auth.Message)
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	svc := newFake()
	s := newRuntime(t, svc)

	st := dispatchAndSettle(t, s, RefreshSession())
	assert.False(t, st.Auth.LoggedIn)
	assert.Equal(t, "no refresh token", st.Auth.Message)
	assert.Empty(t, svc.Calls())
}

func ptr[T any](v T) *T { return &v }
