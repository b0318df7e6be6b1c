package controlplane

import (
	"net/http"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/internal/utils"
)

// Route names
const (
	getDeploymentsName   = "GET_DEPLOYMENTS"
	getDeploymentName    = "GET_DEPLOYMENT"
	createDeploymentName = "CREATE_DEPLOYMENT"
	deleteDeploymentName = "DELETE_DEPLOYMENT"
	startDeploymentName  = "START_DEPLOYMENT"
	stopDeploymentName   = "STOP_DEPLOYMENT"

	getApplicationsName   = "GET_APPLICATIONS"
	getApplicationName    = "GET_APPLICATION"
	deleteApplicationName = "DELETE_APPLICATION"

	signupName        = "SIGNUP"
	passwordResetName = "PASSWORD_RESET"
)

// Path variables
const (
	deploymentIdPathVar  = "deploymentId"
	applicationIdPathVar = "applicationId"
)

const (
	deploymentRoute      = "/deployments/{" + deploymentIdPathVar + "}"
	deploymentsRoute     = "/deployments"
	startDeploymentRoute = deploymentRoute + "/start"
	stopDeploymentRoute  = deploymentRoute + "/stop"

	applicationRoute  = "/applications/{" + applicationIdPathVar + "}"
	applicationsRoute = "/applications"

	signupRoute        = "/auth/signup"
	passwordResetRoute = "/auth/reset"
)

func (s *Server) routes() []utils.Route {
	return []utils.Route{
		{
			Name:        startDeploymentName,
			Method:      http.MethodPost,
			Pattern:     startDeploymentRoute,
			HandlerFunc: s.startDeploymentHandler,
		},
		{
			Name:        stopDeploymentName,
			Method:      http.MethodPost,
			Pattern:     stopDeploymentRoute,
			HandlerFunc: s.stopDeploymentHandler,
		},
		{
			Name:        getDeploymentName,
			Method:      http.MethodGet,
			Pattern:     deploymentRoute,
			HandlerFunc: s.getDeploymentHandler,
		},
		{
			Name:        deleteDeploymentName,
			Method:      http.MethodDelete,
			Pattern:     deploymentRoute,
			HandlerFunc: s.deleteDeploymentHandler,
		},
		{
			Name:        getDeploymentsName,
			Method:      http.MethodGet,
			Pattern:     deploymentsRoute,
			HandlerFunc: s.getDeploymentsHandler,
		},
		{
			Name:        createDeploymentName,
			Method:      http.MethodPost,
			Pattern:     deploymentsRoute,
			HandlerFunc: s.createDeploymentHandler,
		},
		{
			Name:        getApplicationName,
			Method:      http.MethodGet,
			Pattern:     applicationRoute,
			HandlerFunc: s.getApplicationHandler,
		},
		{
			Name:        deleteApplicationName,
			Method:      http.MethodDelete,
			Pattern:     applicationRoute,
			HandlerFunc: s.deleteApplicationHandler,
		},
		{
			Name:        getApplicationsName,
			Method:      http.MethodGet,
			Pattern:     applicationsRoute,
			HandlerFunc: s.getApplicationsHandler,
		},
		{
			Name:        signupName,
			Method:      http.MethodPost,
			Pattern:     signupRoute,
			HandlerFunc: s.signupHandler,
		},
		{
			Name:        passwordResetName,
			Method:      http.MethodPost,
			Pattern:     passwordResetRoute,
			HandlerFunc: s.passwordResetHandler,
		},
	}
}

func isAuthExempt(path string) bool {
	return path == api.PrefixPath+signupRoute || path == api.PrefixPath+passwordResetRoute
}
