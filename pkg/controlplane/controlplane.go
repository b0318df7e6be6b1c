package controlplane

import (
	api "github.com/nexus-weaver/weaver-go/api/controlplane"
)

const (
	Port = 8080
)

// DeploymentFilters narrows ListDeployments. Zero-valued fields are left out
// of the request entirely; an omitted filter never serializes as an empty
// parameter.
type DeploymentFilters struct {
	ApplicationId string
	Status        api.DeploymentStatus
}

// Client is the typed surface of the control plane. Every operation routes
// through the request pipeline and passes its failures along unchanged.
type Client interface {
	ListDeployments(filters *DeploymentFilters) (deployments []*api.DeploymentDTO, err error)
	GetDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error)
	CreateDeployment(reqBody *api.CreateDeploymentRequestBody) (deployment *api.DeploymentDTO, err error)
	DeleteDeployment(deploymentId string) (err error)
	StartDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error)
	StopDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error)
	ListApplications() (applications []*api.ApplicationDTO, err error)
	GetApplication(applicationId string) (application *api.ApplicationDTO, err error)
	DeleteApplication(applicationId string) (err error)
}
