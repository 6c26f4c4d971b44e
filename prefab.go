package warehouse

// WorldProcessor is the callback contract a prefab encoder/decoder
// implements to remap entity references: a Prefab value that is itself an
// EntityID refers to another entity *within that prefab*, not the
// destination World, until Instantiate resolves it.
type WorldProcessor interface {
	// RemapEntity translates a prefab-local entity reference into the
	// concrete EntityID it was instantiated as. ok is false if proc has no
	// mapping for local (Instantiate leaves such values untouched).
	RemapEntity(local EntityID) (id EntityID, ok bool)
}

// PrefabEntity is one entity's worth of data inside a Prefab: a
// prefab-local id, meaningful only for intra-prefab entity references, and
// its component values keyed by TypeHash.
type PrefabEntity struct {
	LocalID EntityID
	Values  map[TypeHash]any
}

// Prefab is the portable, World-independent shape a serialized entity
// bundle takes. Non-goals exclude an actual byte encoding (persistence /
// external formats are an external collaborator's job) — only this struct
// shape and the remap contract are implemented here.
type Prefab struct {
	Entities []PrefabEntity
}

// Instantiate spawns one World entity per PrefabEntity in p, inserting its
// component values. A value that is itself an EntityID is remapped: first
// against p's own entities, falling back to proc for references outside
// the prefab. EntityID fields inside a struct value are not remapped; such
// values are inserted as given. Decoding Values from a wire format is left
// to the caller.
func (p Prefab) Instantiate(w *World, proc WorldProcessor) ([]EntityID, error) {
	ids := make([]EntityID, len(p.Entities))
	remap := make(map[uint64]EntityID, len(p.Entities))
	for i, pe := range p.Entities {
		e, err := w.Spawn()
		if err != nil {
			return nil, err
		}
		ids[i] = e
		remap[pe.LocalID.ToU64()] = e
	}
	for i, pe := range p.Entities {
		e := ids[i]
		for hash, value := range pe.Values {
			comp := componentForHash(hash)
			if comp == nil {
				return nil, ComponentNotFoundError{Type: hash}
			}
			if local, ok := value.(EntityID); ok {
				if resolved, ok := remap[local.ToU64()]; ok {
					value = resolved
				} else if proc != nil {
					if resolved, ok := proc.RemapEntity(local); ok {
						value = resolved
					}
				}
			}
			if err := w.InsertWithValue(e, comp, value); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

func componentForHash(hash TypeHash) Component {
	for _, c := range registeredComponents {
		if c.ID() == hash {
			return c
		}
	}
	return nil
}
