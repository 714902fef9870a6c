package world

import "sort"

// Entity is a stationary world object (a "building") with an item
// inventory. Entities occupy their cell; workers path around them.
type Entity struct {
	ID       string
	Category string
	Pos      Vec2i

	Inventory map[string]int
}

// ItemEntity is a loose item lying on the ground. Claimed marks an item a
// worker has taken custody of mid-transfer so a second worker processed the
// same tick cannot also grab it.
type ItemEntity struct {
	ID      string
	Type    string
	Pos     Vec2i
	Claimed bool
}

// SpawnEntity creates a building of the given category. Returns nil when
// the cell is not free; callers treat that as a soft failure.
func (w *World) SpawnEntity(category string, pos Vec2i) *Entity {
	if category == "" || !w.cellFree(pos) {
		return nil
	}
	e := &Entity{
		ID:        w.newEntityID(),
		Category:  category,
		Pos:       pos,
		Inventory: map[string]int{},
	}
	w.entities[e.ID] = e
	return e
}

// NearestEntity returns the closest entity of the category by Manhattan
// distance. Exact ties go to the first found in ID order.
func (w *World) NearestEntity(category string, from Vec2i) *Entity {
	if category == "" {
		return nil
	}
	ids := make([]string, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var best *Entity
	bestDist := 0
	for _, id := range ids {
		e := w.entities[id]
		if e.Category != category {
			continue
		}
		d := Manhattan(e.Pos, from)
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

func (e *Entity) HasItem(itemType string) bool {
	if e == nil {
		return false
	}
	if itemType == "" {
		for _, n := range e.Inventory {
			if n > 0 {
				return true
			}
		}
		return false
	}
	return e.Inventory[itemType] > 0
}

// TakeItem removes exactly one item of the type from the entity and reports
// whether custody changed. An empty type takes the first available type in
// sorted order.
func (e *Entity) TakeItem(itemType string) (string, bool) {
	if e == nil {
		return "", false
	}
	if itemType == "" {
		types := make([]string, 0, len(e.Inventory))
		for t, n := range e.Inventory {
			if n > 0 {
				types = append(types, t)
			}
		}
		if len(types) == 0 {
			return "", false
		}
		sort.Strings(types)
		itemType = types[0]
	}
	if e.Inventory[itemType] <= 0 {
		return "", false
	}
	e.Inventory[itemType]--
	if e.Inventory[itemType] == 0 {
		delete(e.Inventory, itemType)
	}
	return itemType, true
}

func (e *Entity) AddItem(itemType string) bool {
	if e == nil || itemType == "" {
		return false
	}
	if e.Inventory == nil {
		e.Inventory = map[string]int{}
	}
	e.Inventory[itemType]++
	return true
}

func (w *World) spawnItem(itemType string, pos Vec2i) *ItemEntity {
	if itemType == "" {
		return nil
	}
	it := &ItemEntity{
		ID:   w.newItemID(),
		Type: itemType,
		Pos:  pos,
	}
	w.items[it.ID] = it
	w.itemsAt[pos] = append(w.itemsAt[pos], it.ID)
	return it
}

func (w *World) removeItem(id string) {
	it := w.items[id]
	if it == nil {
		return
	}
	delete(w.items, id)
	ids := w.itemsAt[it.Pos]
	for i, v := range ids {
		if v == id {
			w.itemsAt[it.Pos] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(w.itemsAt[it.Pos]) == 0 {
		delete(w.itemsAt, it.Pos)
	}
}

// groundItemNear finds an unclaimed item of the type within Chebyshev
// distance 1 of the cell. An empty type matches any item. Scan order is
// sorted item ID, so contention resolves deterministically.
func (w *World) groundItemNear(pos Vec2i, itemType string) *ItemEntity {
	ids := make([]string, 0, len(w.items))
	for id := range w.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		it := w.items[id]
		if it.Claimed {
			continue
		}
		if itemType != "" && it.Type != itemType {
			continue
		}
		if Chebyshev(it.Pos, pos) <= 1 {
			return it
		}
	}
	return nil
}
