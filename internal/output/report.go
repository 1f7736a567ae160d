package output

import (
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/analysis"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/response"
)

// Report is the full outcome of one analysis run.
type Report struct {
	Name      string             `json:"name,omitempty"`
	Provider  string             `json:"provider,omitempty"`
	Model     string             `json:"model,omitempty"`
	Analysis  analysis.Result    `json:"analysis"`
	Plan      analysis.Plan      `json:"plan"`
	Structure analysis.Structure `json:"structure"`
	Strategy  response.Strategy  `json:"strategy,omitempty"`
	Sections  response.Sections  `json:"sections"`
	Failed    bool               `json:"failed"`
	Error     string             `json:"error,omitempty"`
	PromptSHA string             `json:"prompt_sha256,omitempty"`
	Duration  string             `json:"duration,omitempty"`
}
