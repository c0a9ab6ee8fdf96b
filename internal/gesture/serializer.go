package gesture

// SerializedClass is the portable representation of one GestureClass
// (spec.md §4.7).
type SerializedClass struct {
	Prototype    []float64 `json:"prototype"`
	ExampleCount uint64    `json:"exampleCount"`
}

// State is the portable recognizer state document produced by Export
// and consumed by Import. It carries everything needed to reconstruct a
// recognizer's behavior except the item memory, which is regenerated
// deterministically from Dim/NumBins on demand (spec.md §4.7).
type State struct {
	Dim       int                        `json:"dim"`
	NumBins   int                        `json:"numBins"`
	Threshold float64                    `json:"threshold"`
	Classes   map[string]SerializedClass `json:"classes"`
}

// export builds a State snapshot of the current config and class store.
func (r *Recognizer) export() State {
	classes := make(map[string]SerializedClass, len(r.store.order))
	for _, name := range r.store.order {
		class := r.store.classes[name]
		prototype := make([]float64, len(class.Prototype))
		copy(prototype, class.Prototype)
		classes[name] = SerializedClass{Prototype: prototype, ExampleCount: class.ExampleCount}
	}

	return State{
		Dim:       r.config.Dim,
		NumBins:   r.config.NumBins,
		Threshold: r.config.Threshold,
		Classes:   classes,
	}
}

// validate checks that a State document is well-formed before it is
// allowed to replace a recognizer's state (spec.md §4.7, §7
// InvalidState).
func (s State) validate() error {
	if s.Dim <= 0 || s.NumBins < 2 {
		return ErrInvalidState
	}
	for _, class := range s.Classes {
		if len(class.Prototype) != s.Dim {
			return ErrInvalidState
		}
	}
	return nil
}
