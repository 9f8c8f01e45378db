package hermes

const (
	SubjectCatalogReload   = "madra.catalog.reload"
	SubjectCatalogReloaded = "madra.catalog.reloaded"

	StreamName   = "MADRA_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectSimulationCompleted(runID string) string { return "madra.simulation." + runID + ".completed" }
func SubjectSweepCompleted(sweepID string) string     { return "madra.sweep." + sweepID + ".completed" }
