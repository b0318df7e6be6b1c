package client

import (
	"net/http"
	"net/url"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

// Client implements controlplane.Client on top of the request pipeline. It
// adds no error kinds of its own.
type Client struct {
	pipeline *pipeline.Pipeline
}

func NewControlPlaneClient(p *pipeline.Pipeline) *Client {
	return &Client{pipeline: p}
}

func (c *Client) ListDeployments(filters *controlplane.DeploymentFilters) (deployments []*api.DeploymentDTO, err error) {
	query := url.Values{}

	if filters != nil {
		if filters.ApplicationId != "" {
			query.Set("applicationId", filters.ApplicationId)
		}

		if filters.Status != "" {
			query.Set("status", string(filters.Status))
		}
	}

	var resp api.GetDeploymentsResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodGet,
		Path:   api.GetDeploymentsPath(),
		Query:  query,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) GetDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error) {
	var resp api.GetDeploymentResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodGet,
		Path:   api.GetDeploymentPath(deploymentId),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) CreateDeployment(reqBody *api.CreateDeploymentRequestBody) (deployment *api.DeploymentDTO, err error) {
	var resp api.GetDeploymentResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodPost,
		Path:   api.GetDeploymentsPath(),
		Body:   reqBody,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DeleteDeployment(deploymentId string) (err error) {
	return c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodDelete,
		Path:   api.GetDeploymentPath(deploymentId),
	}, nil)
}

func (c *Client) StartDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error) {
	var resp api.GetDeploymentResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodPost,
		Path:   api.GetStartDeploymentPath(deploymentId),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) StopDeployment(deploymentId string) (deployment *api.DeploymentDTO, err error) {
	var resp api.GetDeploymentResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodPost,
		Path:   api.GetStopDeploymentPath(deploymentId),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) ListApplications() (applications []*api.ApplicationDTO, err error) {
	var resp api.GetApplicationsResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodGet,
		Path:   api.GetApplicationsPath(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) GetApplication(applicationId string) (application *api.ApplicationDTO, err error) {
	var resp api.GetApplicationResponseBody

	err = c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodGet,
		Path:   api.GetApplicationPath(applicationId),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DeleteApplication(applicationId string) (err error) {
	return c.pipeline.Execute(pipeline.RequestSpec{
		Method: http.MethodDelete,
		Path:   api.GetApplicationPath(applicationId),
	}, nil)
}
