package systems

import "github.com/pthm-cable/fluidball/telemetry"

// SystemInfo describes a timed pass for UI display.
type SystemInfo struct {
	ID          string // telemetry phase name
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "solver", "post")
}

// SystemRegistry holds metadata about every timed pass.
// This centralizes naming so the HUD and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known passes.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds every timed pass in frame order.
// Update this when adding a phase to telemetry.
func (r *SystemRegistry) registerDefaults() {
	// Forces
	r.Register(SystemInfo{ID: telemetry.PhaseSplat, Name: "Splats", Description: "Pointer, burst and emitter impulses", Category: "input"})

	// Solver
	r.Register(SystemInfo{ID: telemetry.PhaseCurl, Name: "Curl", Description: "Scalar curl of velocity", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseVorticity, Name: "Vorticity", Description: "Vorticity confinement force", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseDivergence, Name: "Divergence", Description: "Velocity divergence", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhasePressure, Name: "Pressure", Description: "Jacobi pressure relaxation", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseGradient, Name: "Gradient", Description: "Pressure gradient subtraction", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseAdvection, Name: "Advection", Description: "Semi-Lagrangian transport of velocity and dye", Category: "solver"})

	// Post-processing
	r.Register(SystemInfo{ID: telemetry.PhaseBloom, Name: "Bloom", Description: "Prefilter, blur chain and composite", Category: "post"})
	r.Register(SystemInfo{ID: telemetry.PhaseSunrays, Name: "Sunrays", Description: "Radial light shafts toward the focus", Category: "post"})
	r.Register(SystemInfo{ID: telemetry.PhaseDisplay, Name: "Display", Description: "Final composite to the target", Category: "post"})

	// Host
	r.Register(SystemInfo{ID: telemetry.PhaseReadback, Name: "Readback", Description: "Velocity sampling and capture", Category: "host"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
