package logg

// Shared zap field keys so log lines stay greppable across layers.
const (
	Layer     = "layer"
	Operation = "op"

	ScenarioID = "scenario_id"
	StepID     = "step_id"
	ElementID  = "element_id"
	Provider   = "provider"
	Framework  = "framework"
	Attempt    = "attempt"
	Locator    = "locator"
)
