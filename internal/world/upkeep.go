package world

// Regeneration pulses once a second at the default tick rate.
const regenInterval = 10

// Upkeep advances the world's own processes for a tick: status instances
// tick and expire, then regeneration pulses on the interval. The driving
// loop calls this after the interpreter step so command batches land
// before conditions bite.
func (w *World) Upkeep(tick uint64) {
	if w == nil {
		return
	}
	w.tick = tick
	w.advanceStatuses()
	if tick > 0 && tick%regenInterval == 0 {
		w.regenerate()
	}
}
