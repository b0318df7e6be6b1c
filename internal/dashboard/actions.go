package dashboard

import (
	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
)

// Prebuilt mutations for the deployment actions the dashboard exposes. Each
// sweeps the entity snapshot and every cached deployment list; the post-action
// status is whatever the server reports on the next read, never assumed
// locally.

func StartDeploymentMutation(client controlplane.Client, deploymentId string) Mutation {
	key, listPrefix := DeploymentKeysFor(deploymentId)

	return Mutation{
		Action: func() (interface{}, error) {
			return client.StartDeployment(deploymentId)
		},
		InvalidateKeys:     []string{key},
		InvalidatePrefixes: []string{listPrefix},
		SuccessMessage:     "Deployment started successfully",
		FailureMessage:     "Failed to start deployment",
	}
}

func StopDeploymentMutation(client controlplane.Client, deploymentId string) Mutation {
	key, listPrefix := DeploymentKeysFor(deploymentId)

	return Mutation{
		Action: func() (interface{}, error) {
			return client.StopDeployment(deploymentId)
		},
		InvalidateKeys:     []string{key},
		InvalidatePrefixes: []string{listPrefix},
		SuccessMessage:     "Deployment stopped successfully",
		FailureMessage:     "Failed to stop deployment",
	}
}

func DeleteDeploymentMutation(client controlplane.Client, deploymentId string) Mutation {
	key, listPrefix := DeploymentKeysFor(deploymentId)

	return Mutation{
		Action: func() (interface{}, error) {
			return nil, client.DeleteDeployment(deploymentId)
		},
		InvalidateKeys:     []string{key},
		InvalidatePrefixes: []string{listPrefix},
		SuccessMessage:     "Deployment deleted successfully",
		FailureMessage:     "Failed to delete deployment",
	}
}

func CreateDeploymentMutation(client controlplane.Client, reqBody *api.CreateDeploymentRequestBody) Mutation {
	return Mutation{
		Action: func() (interface{}, error) {
			return client.CreateDeployment(reqBody)
		},
		InvalidatePrefixes: []string{deploymentsKeyPrefix, applicationsKeyPrefix},
		SuccessMessage:     "Deployment created successfully",
		FailureMessage:     "Failed to create deployment",
	}
}

func DeleteApplicationMutation(client controlplane.Client, applicationId string) Mutation {
	return Mutation{
		Action: func() (interface{}, error) {
			return nil, client.DeleteApplication(applicationId)
		},
		InvalidateKeys: []string{ApplicationKey(applicationId)},
		InvalidatePrefixes: []string{
			applicationsKeyPrefix,
			deploymentsKeyPrefix,
		},
		SuccessMessage: "Application deleted successfully",
		FailureMessage: "Failed to delete application",
	}
}
