package controlplane

import (
	"fmt"
)

// Paths
const (
	PrefixPath = "/api/v1"

	DeploymentsPath     = "/deployments"
	DeploymentPath      = "/deployments/%s"
	StartDeploymentPath = "/deployments/%s/start"
	StopDeploymentPath  = "/deployments/%s/stop"

	ApplicationsPath = "/applications"
	ApplicationPath  = "/applications/%s"

	SignupPath        = "/auth/signup"
	PasswordResetPath = "/auth/reset"
)

func GetDeploymentsPath() string {
	return PrefixPath + DeploymentsPath
}

func GetDeploymentPath(deploymentId string) string {
	return PrefixPath + fmt.Sprintf(DeploymentPath, deploymentId)
}

func GetStartDeploymentPath(deploymentId string) string {
	return PrefixPath + fmt.Sprintf(StartDeploymentPath, deploymentId)
}

func GetStopDeploymentPath(deploymentId string) string {
	return PrefixPath + fmt.Sprintf(StopDeploymentPath, deploymentId)
}

func GetApplicationsPath() string {
	return PrefixPath + ApplicationsPath
}

func GetApplicationPath(applicationId string) string {
	return PrefixPath + fmt.Sprintf(ApplicationPath, applicationId)
}

func GetSignupPath() string {
	return PrefixPath + SignupPath
}

func GetPasswordResetPath() string {
	return PrefixPath + PasswordResetPath
}
