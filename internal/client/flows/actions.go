package flows

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/store"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

type Entity string

const (
	EntityAuth     Entity = "auth"
	EntitySpace    Entity = "space"
	EntityGrid     Entity = "grid"
	EntityItem     Entity = "item"
	EntitySearch   Entity = "search"
	EntityReminder Entity = "reminder"
)

// Saga triggers.
const (
	ItemFetchList   = "item/FETCH_LIST"
	ItemFetchOne    = "item/FETCH_ONE"
	ItemCreate      = "item/CREATE"
	ItemUpdate      = "item/UPDATE"
	ItemDelete      = "item/DELETE"
	ItemUploadImage = "item/UPLOAD_IMAGE"

	SpaceFetchList   = "space/FETCH_LIST"
	SpaceFetchOne    = "space/FETCH_ONE"
	SpaceCreate      = "space/CREATE"
	SpaceUpdate      = "space/UPDATE"
	SpaceDelete      = "space/DELETE"
	SpaceUploadImage = "space/UPLOAD_IMAGE"

	GridFetchList = "grid/FETCH_LIST"
	GridCreate    = "grid/CREATE"
	GridUpdate    = "grid/UPDATE"
	GridDelete    = "grid/DELETE"

	SearchRun = "search/RUN"

	AuthLogin    = "auth/LOGIN"
	AuthLogout   = "auth/LOGOUT"
	AuthRegister = "auth/REGISTER"
	AuthFetchMe  = "auth/FETCH_ME"
	AuthUpdateMe = "auth/UPDATE_ME"
	AuthRefresh  = "auth/REFRESH"

	ReminderFetchList = "reminder/FETCH_LIST"
)

// Reducer events, shared by every entity under its own namespace.
const (
	evSetLoading      = "SET_LOADING"
	evListLoaded      = "LIST_LOADED"
	evListFailed      = "LIST_FAILED"
	evSelected        = "SELECTED"
	evEditStatus      = "EDIT_STATUS"
	evClearEditStatus = "CLEAR_EDIT_STATUS"
	evSetFormField    = "SET_FORM_FIELD"
	evResetForm       = "RESET_FORM"

	AuthSucceededType  = "auth/SUCCEEDED"
	AuthFailedType     = "auth/FAILED"
	AuthClearedType    = "auth/CLEARED"
	AuthUserLoadedType = "auth/USER_LOADED"
)

func EventType(e Entity, event string) string { return string(e) + "/" + event }

type IDFields[T any] struct {
	ID     uuid.UUID
	Fields T
}

type ImageUpload struct {
	ID   uuid.UUID
	File api.File
}

type GridCreateRequest struct {
	SpaceID uuid.UUID
	Fields  api.GridFields
}

type Credentials struct {
	Email    string
	Password string
}

type FormField struct {
	Field string
	Value string
}

// item

func FetchItems(q api.ItemQuery) store.Action { return store.Action{Type: ItemFetchList, Payload: q} }
func FetchItem(id uuid.UUID) store.Action     { return store.Action{Type: ItemFetchOne, Payload: id} }
func CreateItem(f api.ItemFields) store.Action {
	return store.Action{Type: ItemCreate, Payload: f}
}
func UpdateItem(id uuid.UUID, f api.ItemFields) store.Action {
	return store.Action{Type: ItemUpdate, Payload: IDFields[api.ItemFields]{ID: id, Fields: f}}
}
func DeleteItem(id uuid.UUID) store.Action { return store.Action{Type: ItemDelete, Payload: id} }
func UploadItemImage(id uuid.UUID, f api.File) store.Action {
	return store.Action{Type: ItemUploadImage, Payload: ImageUpload{ID: id, File: f}}
}

// space

func FetchSpaces() store.Action             { return store.Action{Type: SpaceFetchList} }
func FetchSpace(id uuid.UUID) store.Action  { return store.Action{Type: SpaceFetchOne, Payload: id} }
func DeleteSpace(id uuid.UUID) store.Action { return store.Action{Type: SpaceDelete, Payload: id} }
func CreateSpace(f api.SpaceFields) store.Action {
	return store.Action{Type: SpaceCreate, Payload: f}
}
func UpdateSpace(id uuid.UUID, f api.SpaceFields) store.Action {
	return store.Action{Type: SpaceUpdate, Payload: IDFields[api.SpaceFields]{ID: id, Fields: f}}
}
func UploadSpaceImage(id uuid.UUID, f api.File) store.Action {
	return store.Action{Type: SpaceUploadImage, Payload: ImageUpload{ID: id, File: f}}
}

// grid

func FetchGrids(spaceID uuid.UUID) store.Action { return store.Action{Type: GridFetchList, Payload: spaceID} }
func DeleteGrid(id uuid.UUID) store.Action      { return store.Action{Type: GridDelete, Payload: id} }
func CreateGrid(spaceID uuid.UUID, f api.GridFields) store.Action {
	return store.Action{Type: GridCreate, Payload: GridCreateRequest{SpaceID: spaceID, Fields: f}}
}
func UpdateGrid(id uuid.UUID, f api.GridFields) store.Action {
	return store.Action{Type: GridUpdate, Payload: IDFields[api.GridFields]{ID: id, Fields: f}}
}

// search and reminders

func RunSearch(q api.SearchQuery) store.Action { return store.Action{Type: SearchRun, Payload: q} }
func SearchResults(items []*types.Item) store.Action {
	return store.Action{Type: EventType(EntitySearch, evListLoaded), Payload: items}
}
func FetchReminders(within time.Duration) store.Action {
	return store.Action{Type: ReminderFetchList, Payload: within}
}

// auth

func Login(email, password string) store.Action {
	return store.Action{Type: AuthLogin, Payload: Credentials{Email: email, Password: password}}
}
func Logout() store.Action  { return store.Action{Type: AuthLogout} }
func FetchMe() store.Action { return store.Action{Type: AuthFetchMe} }
func Register(req api.RegisterRequest) store.Action {
	return store.Action{Type: AuthRegister, Payload: req}
}
func UpdateMe(f api.ProfileFields) store.Action { return store.Action{Type: AuthUpdateMe, Payload: f} }
func RefreshSession() store.Action              { return store.Action{Type: AuthRefresh} }

func AuthSucceeded(pair *api.TokenPair) store.Action {
	return store.Action{Type: AuthSucceededType, Payload: pair}
}
func AuthFailed(message string) store.Action { return store.Action{Type: AuthFailedType, Payload: message} }
func AuthCleared(message string) store.Action {
	return store.Action{Type: AuthClearedType, Payload: message}
}
func UserLoaded(u *types.User) store.Action { return store.Action{Type: AuthUserLoadedType, Payload: u} }

// Restore seeds auth state from stored credentials without a backend call.
func Restore(token, refreshToken string) store.Action {
	return AuthSucceeded(&api.TokenPair{AccessToken: token, RefreshToken: refreshToken})
}

// shared reducer events

func SetPageLoading(e Entity, loading bool) store.Action {
	return store.Action{Type: EventType(e, evSetLoading), Payload: loading}
}
func ListLoaded(e Entity, list any) store.Action {
	return store.Action{Type: EventType(e, evListLoaded), Payload: list}
}
func ListFailed(e Entity, message string) store.Action {
	return store.Action{Type: EventType(e, evListFailed), Payload: message}
}
func SelectEntity(e Entity, v any) store.Action {
	return store.Action{Type: EventType(e, evSelected), Payload: v}
}
func SetEditStatus(e Entity, st EditStatus) store.Action {
	return store.Action{Type: EventType(e, evEditStatus), Payload: st}
}
func ClearEditStatus(e Entity) store.Action {
	return store.Action{Type: EventType(e, evClearEditStatus)}
}
func SetFormField(e Entity, field, value string) store.Action {
	return store.Action{Type: EventType(e, evSetFormField), Payload: FormField{Field: field, Value: value}}
}
func ResetForm(e Entity) store.Action { return store.Action{Type: EventType(e, evResetForm)} }
