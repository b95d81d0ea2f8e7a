package pet

// DegradeDelta is the passive decay of one tick.
var DegradeDelta = Delta{Hunger: 2, Happiness: -1, Cleanliness: -1.5, Sleepiness: 1}

// Degrade applies one tick of decay. Repeated ticks saturate at the bounds
// instead of overshooting.
func (s *State) Degrade() {
	s.Vitals.Apply(DegradeDelta)
}
