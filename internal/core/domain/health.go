package domain

// HealthProbeText is embedded to check the embedding provider.
const HealthProbeText = "health check test"

// ComponentHealth is the probe result for one external service.
type ComponentHealth struct {
	Service       string `json:"service"`
	Healthy       bool   `json:"healthy"`
	DocumentCount int64  `json:"document_count,omitempty"`
	LatencyMS     int64  `json:"response_time_ms"`
	Error         string `json:"error,omitempty"`
}

// HealthReport aggregates component probes.
type HealthReport struct {
	Healthy    bool              `json:"healthy"`
	Components []ComponentHealth `json:"components"`
}

// NewHealthReport builds a report that is healthy only if every component is.
func NewHealthReport(components ...ComponentHealth) HealthReport {
	healthy := len(components) > 0
	for _, c := range components {
		if !c.Healthy {
			healthy = false
		}
	}
	return HealthReport{Healthy: healthy, Components: components}
}
