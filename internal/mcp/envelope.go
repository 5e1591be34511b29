package mcp

// ResponseEnvelope wraps every tool result with the context an agent needs to
// interpret it responsibly.
type ResponseEnvelope struct {
	Context  ResponseContext   `json:"context"`
	Data     any               `json:"data"`
	Warnings []string          `json:"warnings,omitempty"`
	Guidance []string          `json:"guidance,omitempty"`
	Charts   map[string]string `json:"charts,omitempty"`
}

// ResponseContext identifies what the data refers to.
type ResponseContext struct {
	ProjectID string `json:"project_id,omitempty"`
	RunID     string `json:"run_id,omitempty"`
}

// WrapResponse builds an envelope. Nil slices are omitted from the output.
func WrapResponse(data any, ctx ResponseContext, warnings, guidance []string) ResponseEnvelope {
	return ResponseEnvelope{
		Context:  ctx,
		Data:     data,
		Warnings: warnings,
		Guidance: guidance,
	}
}
