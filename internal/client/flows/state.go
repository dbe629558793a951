package flows

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

type EditKind string

const (
	EditCreate EditKind = "create"
	EditUpdate EditKind = "update"
	EditDelete EditKind = "delete"
	EditUpload EditKind = "upload"
)

// EditStatus is the outcome of the last mutation on a slice. Done is false
// until a mutation has finished.
type EditStatus struct {
	Done      bool     `json:"done" yaml:"done"`
	IsSuccess bool     `json:"is_success" yaml:"is_success"`
	Kind      EditKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty"`
	Payload   any      `json:"payload,omitempty" yaml:"payload,omitempty"`
}

type ItemState struct {
	Form        map[string]string
	List        []*types.Item
	Scope       api.ItemQuery
	Selected    *types.Item
	PageLoading bool
	Message     string
	EditStatus  EditStatus
}

type SpaceState struct {
	Form          map[string]string
	List          []*types.Space
	Selected      *types.Space
	SelectedGrids []*types.Grid
	PageLoading   bool
	Message       string
	EditStatus    EditStatus
}

type GridState struct {
	Form        map[string]string
	SpaceID     uuid.UUID
	List        []*types.Grid
	Selected    *types.Grid
	PageLoading bool
	Message     string
	EditStatus  EditStatus
}

type SearchState struct {
	Query   api.SearchQuery
	Results []*types.Item
	Loading bool
	Done    bool
	Message string
}

type AuthState struct {
	Token        string
	RefreshToken string
	User         *types.User
	LoggedIn     bool
	Loading      bool
	Message      string
	EditStatus   EditStatus
}

type ReminderState struct {
	Within  time.Duration
	Items   []*types.Item
	Loading bool
	Message string
}

type RootState struct {
	Auth     AuthState
	Space    SpaceState
	Grid     GridState
	Item     ItemState
	Search   SearchState
	Reminder ReminderState
}

// SpaceDetail is a space together with its layout.
type SpaceDetail struct {
	Space *types.Space
	Grids []*types.Grid
}

type GridList struct {
	SpaceID uuid.UUID
	Grids   []*types.Grid
}
