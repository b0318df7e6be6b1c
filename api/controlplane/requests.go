package controlplane

type (
	CreateDeploymentRequestBody struct {
		ApplicationName string               `json:"applicationName"`
		Description     string               `json:"description,omitempty"`
		Version         string               `json:"version"`
		Services        []*ServiceDefinition `json:"services"`
	}

	ServiceDefinition struct {
		Name        string            `json:"name"`
		Language    string            `json:"language"`
		Port        int               `json:"port,omitempty"`
		Source      string            `json:"source"`
		Command     string            `json:"command,omitempty"`
		Environment map[string]string `json:"environment,omitempty"`
		Limits      *ResourceLimits   `json:"limits,omitempty"`
	}

	ResourceLimits struct {
		Memory    int64 `json:"memory,omitempty"`
		CpuShares int   `json:"cpuShares,omitempty"`
		PidsLimit int   `json:"pidsLimit,omitempty"`
	}

	SignupRequestBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	PasswordResetRequestBody struct {
		Email string `json:"email"`
	}
)
