package flows

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/store"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

// RootReducer fans each action out to every slice. Slices are replaced,
// never edited in place, so earlier states stay valid.
func RootReducer(s RootState, a store.Action) RootState {
	s.Auth = reduceAuth(s.Auth, a)
	s.Space = reduceSpace(s.Space, a)
	s.Grid = reduceGrid(s.Grid, a)
	s.Item = reduceItem(s.Item, a)
	s.Search = reduceSearch(s.Search, a)
	s.Reminder = reduceReminder(s.Reminder, a)
	return s
}

// event returns the event part of a namespaced type when it belongs to e.
func event(e Entity, typ string) (string, bool) {
	ns, ev, ok := strings.Cut(typ, "/")
	if !ok || ns != string(e) {
		return "", false
	}
	return ev, true
}

func withField(form map[string]string, f FormField) map[string]string {
	next := maps.Clone(form)
	if next == nil {
		next = make(map[string]string)
	}
	if f.Value == "" {
		delete(next, f.Field)
	} else {
		next[f.Field] = f.Value
	}
	return next
}

// deletedID is the id a successful delete removed, if any.
func deletedID(st EditStatus) (uuid.UUID, bool) {
	if !st.IsSuccess || st.Kind != EditDelete {
		return uuid.Nil, false
	}
	id, ok := st.Payload.(uuid.UUID)
	return id, ok
}

func reduceItem(st ItemState, a store.Action) ItemState {
	if a.Type == ItemFetchList {
		if q, ok := a.Payload.(api.ItemQuery); ok {
			st.Scope = q
		}
		return st
	}
	ev, ok := event(EntityItem, a.Type)
	if !ok {
		return st
	}
	switch ev {
	case evSetLoading:
		st.PageLoading, _ = a.Payload.(bool)
	case evListLoaded:
		if items, ok := a.Payload.([]*types.Item); ok {
			st.List = items
			st.PageLoading = false
			st.Message = ""
		}
	case evListFailed:
		st.PageLoading = false
		st.Message, _ = a.Payload.(string)
	case evSelected:
		st.Selected, _ = a.Payload.(*types.Item)
		st.PageLoading = false
	case evEditStatus:
		es, _ := a.Payload.(EditStatus)
		st.EditStatus = es
		st.PageLoading = false
		st.Message = ""
		if !es.IsSuccess {
			st.Message = es.Message
			break
		}
		if id, ok := deletedID(es); ok && st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
		if it, ok := es.Payload.(*types.Item); ok {
			st.Selected = it
		}
		if es.Kind == EditCreate {
			st.Form = nil
		}
	case evClearEditStatus:
		st.EditStatus = EditStatus{}
	case evSetFormField:
		if f, ok := a.Payload.(FormField); ok {
			st.Form = withField(st.Form, f)
		}
	case evResetForm:
		st.Form = nil
	}
	return st
}

func reduceSpace(st SpaceState, a store.Action) SpaceState {
	ev, ok := event(EntitySpace, a.Type)
	if !ok {
		return st
	}
	switch ev {
	case evSetLoading:
		st.PageLoading, _ = a.Payload.(bool)
	case evListLoaded:
		if spaces, ok := a.Payload.([]*types.Space); ok {
			st.List = spaces
			st.PageLoading = false
			st.Message = ""
		}
	case evListFailed:
		st.PageLoading = false
		st.Message, _ = a.Payload.(string)
	case evSelected:
		st.PageLoading = false
		if d, ok := a.Payload.(SpaceDetail); ok {
			st.Selected = d.Space
			st.SelectedGrids = d.Grids
		}
	case evEditStatus:
		es, _ := a.Payload.(EditStatus)
		st.EditStatus = es
		st.PageLoading = false
		st.Message = ""
		if !es.IsSuccess {
			st.Message = es.Message
			break
		}
		if id, ok := deletedID(es); ok && st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
			st.SelectedGrids = nil
		}
		if sp, ok := es.Payload.(*types.Space); ok {
			if st.Selected == nil || st.Selected.ID != sp.ID {
				st.SelectedGrids = nil
			}
			st.Selected = sp
		}
		if es.Kind == EditCreate {
			st.Form = nil
		}
	case evClearEditStatus:
		st.EditStatus = EditStatus{}
	case evSetFormField:
		if f, ok := a.Payload.(FormField); ok {
			st.Form = withField(st.Form, f)
		}
	case evResetForm:
		st.Form = nil
	}
	return st
}

func reduceGrid(st GridState, a store.Action) GridState {
	switch a.Type {
	case GridFetchList:
		if id, ok := a.Payload.(uuid.UUID); ok {
			st.SpaceID = id
		}
		return st
	case EventType(EntitySpace, evSelected):
		// A loaded space detail brings its layout along.
		if d, ok := a.Payload.(SpaceDetail); ok && d.Space != nil {
			st.SpaceID = d.Space.ID
			st.List = d.Grids
		}
		return st
	}
	ev, ok := event(EntityGrid, a.Type)
	if !ok {
		return st
	}
	switch ev {
	case evSetLoading:
		st.PageLoading, _ = a.Payload.(bool)
	case evListLoaded:
		if gl, ok := a.Payload.(GridList); ok {
			st.SpaceID = gl.SpaceID
			st.List = gl.Grids
			st.PageLoading = false
			st.Message = ""
		}
	case evListFailed:
		st.PageLoading = false
		st.Message, _ = a.Payload.(string)
	case evSelected:
		st.Selected, _ = a.Payload.(*types.Grid)
	case evEditStatus:
		es, _ := a.Payload.(EditStatus)
		st.EditStatus = es
		st.PageLoading = false
		st.Message = ""
		if !es.IsSuccess {
			st.Message = es.Message
			break
		}
		if id, ok := deletedID(es); ok && st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
		if g, ok := es.Payload.(*types.Grid); ok {
			st.Selected = g
		}
		if es.Kind == EditCreate {
			st.Form = nil
		}
	case evClearEditStatus:
		st.EditStatus = EditStatus{}
	case evSetFormField:
		if f, ok := a.Payload.(FormField); ok {
			st.Form = withField(st.Form, f)
		}
	case evResetForm:
		st.Form = nil
	}
	return st
}

func reduceSearch(st SearchState, a store.Action) SearchState {
	switch a.Type {
	case SearchRun:
		if q, ok := a.Payload.(api.SearchQuery); ok {
			st.Query = q
		}
		st.Loading = true
		st.Done = false
		st.Message = ""
	case EventType(EntitySearch, evListLoaded):
		st.Results, _ = a.Payload.([]*types.Item)
		st.Loading = false
		st.Done = true
	case EventType(EntitySearch, evListFailed):
		st.Loading = false
		st.Done = true
		st.Message, _ = a.Payload.(string)
	}
	return st
}

func reduceReminder(st ReminderState, a store.Action) ReminderState {
	switch a.Type {
	case ReminderFetchList:
		st.Within, _ = a.Payload.(time.Duration)
		st.Loading = true
		st.Message = ""
	case EventType(EntityReminder, evListLoaded):
		st.Items, _ = a.Payload.([]*types.Item)
		st.Loading = false
	case EventType(EntityReminder, evListFailed):
		st.Loading = false
		st.Message, _ = a.Payload.(string)
	}
	return st
}

func reduceAuth(st AuthState, a store.Action) AuthState {
	switch a.Type {
	case EventType(EntityAuth, evSetLoading):
		st.Loading, _ = a.Payload.(bool)
	case AuthSucceededType:
		pair, _ := a.Payload.(*api.TokenPair)
		if pair == nil || pair.AccessToken == "" {
			return st
		}
		st.Token = pair.AccessToken
		if pair.RefreshToken != "" {
			st.RefreshToken = pair.RefreshToken
		}
		st.LoggedIn = true
		st.Loading = false
		st.Message = ""
	case AuthFailedType:
		st.Loading = false
		st.Message, _ = a.Payload.(string)
	case AuthClearedType:
		msg, _ := a.Payload.(string)
		return AuthState{Message: msg}
	case AuthUserLoadedType:
		st.User, _ = a.Payload.(*types.User)
		st.Loading = false
	case EventType(EntityAuth, evEditStatus):
		es, _ := a.Payload.(EditStatus)
		st.EditStatus = es
		st.Loading = false
		st.Message = ""
		if !es.IsSuccess {
			st.Message = es.Message
		}
	case EventType(EntityAuth, evClearEditStatus):
		st.EditStatus = EditStatus{}
	}
	return st
}
