package hermes

import "time"

type SimulationCompletedEvent struct {
	RunID         string    `json:"run_id"`
	TechniqueID   string    `json:"technique_id"`
	EnvironmentID string    `json:"environment_id"`
	Direction     string    `json:"direction"`
	Context       string    `json:"context"`
	Match         float64   `json:"match"`
	FinalReserve  float64   `json:"final_reserve"`
	Fullness      float64   `json:"fullness"`
	Equilibrium   float64   `json:"equilibrium"`
	Samples       int       `json:"samples"`
	Timestamp     time.Time `json:"timestamp"`
}

type SweepCompletedEvent struct {
	SweepID   string    `json:"sweep_id"`
	Knob      string    `json:"knob"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

type CatalogReloadedEvent struct {
	Techniques   int       `json:"techniques"`
	Environments int       `json:"environments"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
