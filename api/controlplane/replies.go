package controlplane

type (
	GetDeploymentsResponseBody  = []*DeploymentDTO
	GetDeploymentResponseBody   = DeploymentDTO
	GetApplicationsResponseBody = []*ApplicationDTO
	GetApplicationResponseBody  = ApplicationDTO
)

// ProblemDetails is the RFC 7807 error body the control plane sends on every
// non-success status.
type ProblemDetails struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Status  int    `json:"status,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserMessage returns the best human readable message the body carries.
func (p *ProblemDetails) UserMessage() string {
	if p == nil {
		return ""
	}

	if p.Detail != "" {
		return p.Detail
	}

	if p.Message != "" {
		return p.Message
	}

	return p.Title
}
