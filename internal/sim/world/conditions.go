package world

import "strings"

// Condition names understood by ifelse nodes and pending branches.
const (
	CondCarryingItem    = "carrying_item"
	CondBuildingHasItem = "building_has_item"
	CondProcessingDone  = "processing_done"
)

// evalCondition checks a named condition against current world/worker
// state, synchronously. Unknown conditions evaluate false, which routes an
// ifelse to its alternate branch rather than stalling.
func (w *World) evalCondition(wk *Worker, condition, value string) bool {
	switch condition {
	case CondCarryingItem:
		if value == "" {
			return wk.Carried != ""
		}
		return wk.Carried == value

	case CondBuildingHasItem:
		// value is "entityType:itemType"; a missing item part checks for
		// any inventory at all.
		category, itemType := value, ""
		if i := strings.IndexByte(value, ':'); i >= 0 {
			category, itemType = value[:i], value[i+1:]
		}
		e := w.NearestEntity(category, wk.Pos)
		return e.HasItem(itemType)

	case CondProcessingDone:
		return w.backendDone

	default:
		return false
	}
}

// SetBackendDone flips the flag the "processing_done" condition reads;
// exposed to the runtime API so the planner can signal completion of its
// out-of-process work.
func (w *World) SetBackendDone(done bool) { w.backendDone = done }
