// Package gesture implements a few-shot hand gesture classifier built on
// Hyperdimensional Computing (HDC). It turns a stream of 21 three-dimensional
// hand landmarks into high-dimensional bipolar hypervectors, learns gesture
// classes from a handful of example poses, and classifies live poses by
// nearest-prototype cosine similarity. See spec.md for the full design.
package gesture

import (
	"sort"

	"github.com/ayusman/kuchipudi-hdc/internal/detector"
)

// Default recognizer configuration values (spec.md §6).
const (
	DefaultDim       = 10000
	DefaultNumBins   = 16
	DefaultThreshold = 0.25
	DefaultSeed      = 42
)

// Config holds the parameters fixed at recognizer construction and
// preserved across export/import (spec.md §3).
type Config struct {
	// Dim is the hypervector dimensionality D.
	Dim int
	// NumBins is the number of quantization bins per feature (>= 2).
	NumBins int
	// Threshold is the minimum cosine similarity for a non-null prediction.
	Threshold float64
	// Seed reserved for future per-instance randomization. Item-memory
	// hypervectors never depend on it (spec.md §4.4's determinism
	// contract requires entries to depend only on (Dim, NumBins,
	// feature, bin)), so today this field is stored but not consumed.
	Seed uint32
}

// DefaultConfig returns the recognizer configuration spec.md §6
// recommends: D=10000, numBins=16, threshold=0.25, seed=42.
func DefaultConfig() Config {
	return Config{
		Dim:       DefaultDim,
		NumBins:   DefaultNumBins,
		Threshold: DefaultThreshold,
		Seed:      DefaultSeed,
	}
}

// Recognizer is a single HDC gesture classifier instance. It owns its
// item memory and class store for its entire lifetime and is not
// safe for concurrent use — callers serialize access to one instance,
// and create independent instances for independent streams (spec.md §5).
type Recognizer struct {
	config Config
	memory *itemMemory
	store  *ClassStore
}

// New creates a Recognizer with the given configuration. A Dim <= 0 is
// replaced with DefaultDim and a NumBins < 2 with DefaultNumBins;
// Threshold and Seed are used as given (0 is a meaningful, if
// permissive, threshold).
func New(config Config) *Recognizer {
	if config.Dim <= 0 {
		config.Dim = DefaultDim
	}
	if config.NumBins < 2 {
		config.NumBins = DefaultNumBins
	}

	return &Recognizer{
		config: config,
		memory: newItemMemory(config.Dim, config.NumBins),
		store:  newClassStore(config.Threshold),
	}
}

// Config returns the recognizer's current configuration.
func (r *Recognizer) Config() Config {
	return r.config
}

// Encode converts a frame of hand landmarks into a bipolar hypervector.
// It is pure and idempotent: the same landmarks and config always
// produce the same HV (spec.md §8 Law 2). Returns
// ErrInvalidLandmarkCount if landmarks does not have exactly
// detector.NumLandmarks entries.
func (r *Recognizer) Encode(landmarks []detector.Point3D) (HV, error) {
	if len(landmarks) != detector.NumLandmarks {
		return HV{}, ErrInvalidLandmarkCount
	}

	features := extractFeatures(landmarks)

	acc := make([]int32, r.config.Dim)
	for i, v := range features {
		lo, hi := featureRange(i)
		bin := quantize(v, lo, hi, r.config.NumBins)
		r.memory.get(i, bin).addInto(acc)
	}

	return binarize(acc), nil
}

// AddExample folds hv into the named gesture class (creating it if
// necessary) and returns the class's new example count (spec.md §4.6).
// The name is canonicalized to uppercase.
func (r *Recognizer) AddExample(name string, hv HV) uint64 {
	return r.store.AddExample(name, hv, r.config.Dim)
}

// Predict classifies hv against the learned classes by nearest-prototype
// cosine similarity (spec.md §4.6). Returns a null label if no classes
// are registered or the best similarity is below the configured
// threshold.
func (r *Recognizer) Predict(hv HV) PredictResult {
	return r.store.Predict(hv, r.config.Dim)
}

// GetClassNames returns the registered class names in insertion order.
func (r *Recognizer) GetClassNames() []string {
	return r.store.GetClassNames()
}

// GetExampleCount returns how many examples have been added to name
// (case-insensitive), or 0 if the class doesn't exist.
func (r *Recognizer) GetExampleCount(name string) uint64 {
	return r.store.GetExampleCount(name)
}

// ClearAll removes every learned class. Item memory and config are
// preserved (spec.md §3 Lifecycle).
func (r *Recognizer) ClearAll() {
	r.store.ClearAll()
}

// RemoveGesture removes the named class and reports whether it existed.
func (r *Recognizer) RemoveGesture(name string) bool {
	return r.store.RemoveGesture(name)
}

// Export returns a portable snapshot of the recognizer's config and
// learned classes (spec.md §4.7). The item memory is never serialized;
// it is regenerated deterministically on demand.
func (r *Recognizer) Export() State {
	return r.export()
}

// Import validates state and, if valid, atomically replaces the
// recognizer's config and class table. Item memory is discarded and
// will be lazily regenerated under the new (Dim, NumBins) — which
// assigns different hypervectors to the same (feature, bin) pair than
// before the import if Dim changed. Entries are seeded by feature and
// bin alone, so a NumBins change does not alter them. On any validation
// failure, the recognizer is left completely untouched
// (spec.md §4.7, §7 InvalidState).
func (r *Recognizer) Import(state State) error {
	if err := state.validate(); err != nil {
		return err
	}

	config := Config{
		Dim:       state.Dim,
		NumBins:   state.NumBins,
		Threshold: state.Threshold,
		Seed:      r.config.Seed,
	}

	// State.Classes is an unordered map (spec.md §4.7): insertion order
	// from before export is not part of the portable format. Imported
	// classes are ordered lexicographically so that repeated imports of
	// the same state are reproducible, rather than depending on Go's
	// randomized map iteration.
	names := make([]string, 0, len(state.Classes))
	for name := range state.Classes {
		names = append(names, name)
	}
	sort.Strings(names)

	store := newClassStore(state.Threshold)
	for _, name := range names {
		sc := state.Classes[name]
		prototype := make([]float64, len(sc.Prototype))
		copy(prototype, sc.Prototype)
		store.classes[name] = &GestureClass{
			Name:         name,
			Prototype:    prototype,
			ExampleCount: sc.ExampleCount,
		}
		store.order = append(store.order, name)
	}

	r.config = config
	r.memory = newItemMemory(config.Dim, config.NumBins)
	r.store = store
	return nil
}
