package controlplane

type DeploymentStatus string

const (
	DeploymentPending     DeploymentStatus = "PENDING"
	DeploymentDeploying   DeploymentStatus = "DEPLOYING"
	DeploymentDeployed    DeploymentStatus = "DEPLOYED"
	DeploymentFailed      DeploymentStatus = "FAILED"
	DeploymentTerminating DeploymentStatus = "TERMINATING"
	DeploymentTerminated  DeploymentStatus = "TERMINATED"
)

type ServiceStatus string

const (
	ServiceInit       ServiceStatus = "INIT"
	ServiceStarting   ServiceStatus = "STARTING"
	ServiceRunning    ServiceStatus = "RUNNING"
	ServiceStopping   ServiceStatus = "STOPPING"
	ServiceStopped    ServiceStatus = "STOPPED"
	ServiceFailed     ServiceStatus = "FAILED"
	ServiceTerminated ServiceStatus = "TERMINATED"
)

type (
	// DeploymentDTO is the control plane's view of a deployment. Statuses are
	// server owned, the client only renders them.
	DeploymentDTO struct {
		Id              string           `json:"id"`
		ApplicationId   string           `json:"applicationId"`
		ApplicationName string           `json:"applicationName"`
		Version         string           `json:"version"`
		Status          DeploymentStatus `json:"status"`
		Services        []*ServiceDTO    `json:"services"`
		CreatedAt       string           `json:"createdAt"`
		UpdatedAt       string           `json:"updatedAt"`
	}

	// ServiceDTO belongs to exactly one deployment. ProcessId and NodeId are
	// assigned by the scheduler and are empty before the service starts.
	ServiceDTO struct {
		Id          string        `json:"id"`
		Name        string        `json:"name"`
		ProcessId   string        `json:"processId,omitempty"`
		NodeId      string        `json:"nodeId,omitempty"`
		Status      ServiceStatus `json:"status"`
		Language    string        `json:"language"`
		Port        int           `json:"port,omitempty"`
		MemoryLimit int64         `json:"memoryLimit,omitempty"`
		CpuShares   int           `json:"cpuShares,omitempty"`
	}

	ApplicationDTO struct {
		Id                string   `json:"id"`
		Name              string   `json:"name"`
		Description       string   `json:"description,omitempty"`
		DeploymentCount   int      `json:"deploymentCount"`
		ActiveDeployments int      `json:"activeDeployments"`
		LastDeployedAt    string   `json:"lastDeployedAt,omitempty"`
		CreatedAt         string   `json:"createdAt"`
		UpdatedAt         string   `json:"updatedAt"`
		Languages         []string `json:"languages,omitempty"`
	}
)
