package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sort"
)

// stateDigest hashes the externally-visible world state in a fixed order.
// Replays compare digests tick by tick to prove determinism.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(w.cfg.Seed))
	digestWriteU64(h, &tmp, uint64(w.cfg.Width))
	digestWriteU64(h, &tmp, uint64(w.cfg.Height))
	h.Write([]byte{boolByte(w.backendDone)})

	w.digestWorkers(h, &tmp)
	w.digestEntities(h, &tmp)
	w.digestItems(h, &tmp)

	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestWorkers(h io.Writer, tmp *[8]byte) {
	ids := make([]string, 0, len(w.workers))
	for id := range w.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	digestWriteU64(h, tmp, uint64(len(ids)))
	for _, id := range ids {
		wk := w.workers[id]
		io.WriteString(h, wk.ID)
		io.WriteString(h, wk.Name)
		digestWriteI64(h, tmp, int64(wk.Pos.X))
		digestWriteI64(h, tmp, int64(wk.Pos.Y))
		digestWriteU64(h, tmp, uint64(len(wk.Path)))
		io.WriteString(h, wk.Carried)
		io.WriteString(h, string(wk.Activity))
		if c := wk.Program; c != nil {
			h.Write([]byte{1, boolByte(c.Done)})
			digestWriteI64(h, tmp, int64(c.Index))
			digestWriteI64(h, tmp, int64(c.WaitTimer))
		} else {
			h.Write([]byte{0})
		}
	}
}

func (w *World) digestEntities(h io.Writer, tmp *[8]byte) {
	ids := make([]string, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	digestWriteU64(h, tmp, uint64(len(ids)))
	for _, id := range ids {
		e := w.entities[id]
		io.WriteString(h, e.ID)
		io.WriteString(h, e.Category)
		digestWriteI64(h, tmp, int64(e.Pos.X))
		digestWriteI64(h, tmp, int64(e.Pos.Y))
		items := make([]string, 0, len(e.Inventory))
		for t, n := range e.Inventory {
			if n > 0 {
				items = append(items, t)
			}
		}
		sort.Strings(items)
		for _, t := range items {
			io.WriteString(h, t)
			digestWriteU64(h, tmp, uint64(e.Inventory[t]))
		}
	}
}

func (w *World) digestItems(h io.Writer, tmp *[8]byte) {
	ids := make([]string, 0, len(w.items))
	for id := range w.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	digestWriteU64(h, tmp, uint64(len(ids)))
	for _, id := range ids {
		it := w.items[id]
		io.WriteString(h, it.ID)
		io.WriteString(h, it.Type)
		digestWriteI64(h, tmp, int64(it.Pos.X))
		digestWriteI64(h, tmp, int64(it.Pos.Y))
		h.Write([]byte{boolByte(it.Claimed)})
	}
}

func digestWriteU64(h io.Writer, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h io.Writer, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
