package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

// Change actions carried in realtime payloads.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionUploaded = "uploaded"
)

type InventoryNotifier interface {
	SpaceChanged(userID uuid.UUID, action string, space *types.Space)
	GridChanged(userID uuid.UUID, action string, grid *types.Grid)
	ItemChanged(userID uuid.UUID, action string, item *types.Item)
	ItemReminderDue(userID uuid.UUID, item *types.Item)
}

type inventoryNotifier struct {
	emit SSEEmitter
}

func NewInventoryNotifier(emit SSEEmitter) InventoryNotifier {
	return &inventoryNotifier{emit: emit}
}

func (n *inventoryNotifier) SpaceChanged(userID uuid.UUID, action string, space *types.Space) {
	n.send(userID, realtime.SSEEventSpaceChanged, map[string]any{"action": action, "space": space})
}

func (n *inventoryNotifier) GridChanged(userID uuid.UUID, action string, grid *types.Grid) {
	n.send(userID, realtime.SSEEventGridChanged, map[string]any{"action": action, "grid": grid})
}

func (n *inventoryNotifier) ItemChanged(userID uuid.UUID, action string, item *types.Item) {
	n.send(userID, realtime.SSEEventItemChanged, map[string]any{"action": action, "item": item})
}

func (n *inventoryNotifier) ItemReminderDue(userID uuid.UUID, item *types.Item) {
	data := map[string]any{"item": item}
	if item != nil {
		data["reminder_at"] = item.ReminderAt
		data["reminder_note"] = item.ReminderNote
	}
	n.send(userID, realtime.SSEEventItemReminderDue, data)
}

func (n *inventoryNotifier) send(userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: userID.String(),
		Event:   event,
		Data:    data,
	})
}
