package systems

// Events receives component activity for telemetry. telemetry.Collector
// satisfies it.
type Events interface {
	RecordEmitted(n int)
	RecordForcedRetirement(n int)
	RecordNaturalExpiry()
	RecordEngineFailure(component string)
	RecordBoundaryTransition(from, to string)
	RecordShapesSpawned(n int)
}

// NopEvents discards everything.
type NopEvents struct{}

func (NopEvents) RecordEmitted(int) {}
func (NopEvents) RecordForcedRetirement(int) {}
func (NopEvents) RecordNaturalExpiry() {}
func (NopEvents) RecordEngineFailure(string) {}
func (NopEvents) RecordBoundaryTransition(string, string) {}
func (NopEvents) RecordShapesSpawned(int) {}

func eventsOrNop(ev Events) Events {
	if ev == nil {
		return NopEvents{}
	}
	return ev
}
