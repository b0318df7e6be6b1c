package controlplane

import (
	"net/http"

	json "github.com/goccy/go-json"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/internal/utils"
)

func (s *Server) getDeploymentsHandler(w http.ResponseWriter, r *http.Request) {
	applicationId := r.URL.Query().Get("applicationId")
	status := r.URL.Query().Get("status")

	s.lock.Lock()

	deployments := make(api.GetDeploymentsResponseBody, 0, len(s.deployments))

	for _, deployment := range s.deployments {
		if applicationId != "" && deployment.ApplicationId != applicationId {
			continue
		}

		if status != "" && deployment.Status != api.DeploymentStatus(status) {
			continue
		}

		deployments = append(deployments, cloneDeploymentLocked(deployment))
	}

	s.lock.Unlock()

	utils.SendJSONReplyOK(w, deployments)
}

func (s *Server) getDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	deploymentId := utils.ExtractPathVar(r, deploymentIdPathVar)

	s.lock.Lock()

	deployment, ok := s.deployments[deploymentId]
	if ok {
		deployment = cloneDeploymentLocked(deployment)
	}

	s.lock.Unlock()

	if !ok {
		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Deployment not found: "+deploymentId)

		return
	}

	utils.SendJSONReplyOK(w, deployment)
}

func (s *Server) createDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	var reqBody api.CreateDeploymentRequestBody

	err := json.NewDecoder(r.Body).Decode(&reqBody)
	if err != nil {
		utils.SendProblem(w, http.StatusBadRequest, "Validation Failed", "Malformed request body")

		return
	}

	if reqBody.ApplicationName == "" || reqBody.Version == "" || len(reqBody.Services) == 0 {
		utils.SendProblem(w, http.StatusBadRequest, "Validation Failed", "Request validation failed")

		return
	}

	s.lock.Lock()

	application := s.findApplicationLocked(reqBody.ApplicationName)
	if application == nil {
		application = &api.ApplicationDTO{
			Id:          newId(),
			Name:        reqBody.ApplicationName,
			Description: reqBody.Description,
			CreatedAt:   timestamp(),
			UpdatedAt:   timestamp(),
		}
		s.applications[application.Id] = application
	}

	services := make([]*api.ServiceDTO, 0, len(reqBody.Services))

	for _, definition := range reqBody.Services {
		service := &api.ServiceDTO{
			Id:       newId(),
			Name:     definition.Name,
			Status:   api.ServiceInit,
			Language: definition.Language,
			Port:     definition.Port,
		}

		if definition.Limits != nil {
			service.MemoryLimit = definition.Limits.Memory
			service.CpuShares = definition.Limits.CpuShares
		}

		services = append(services, service)
	}

	deployment := &api.DeploymentDTO{
		Id:              newId(),
		ApplicationId:   application.Id,
		ApplicationName: application.Name,
		Version:         reqBody.Version,
		Status:          api.DeploymentPending,
		Services:        services,
		CreatedAt:       timestamp(),
		UpdatedAt:       timestamp(),
	}

	s.deployments[deployment.Id] = deployment
	application.LastDeployedAt = deployment.CreatedAt
	s.refreshApplicationLocked(application)

	reply := cloneDeploymentLocked(deployment)

	s.lock.Unlock()

	utils.SendJSONReplyStatus(w, http.StatusCreated, reply)
}

func (s *Server) deleteDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	deploymentId := utils.ExtractPathVar(r, deploymentIdPathVar)

	s.lock.Lock()

	deployment, ok := s.deployments[deploymentId]
	if !ok {
		s.lock.Unlock()

		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Deployment not found: "+deploymentId)

		return
	}

	delete(s.deployments, deploymentId)

	if application, hasApp := s.applications[deployment.ApplicationId]; hasApp {
		s.refreshApplicationLocked(application)
	}

	s.lock.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	deploymentId := utils.ExtractPathVar(r, deploymentIdPathVar)

	s.lock.Lock()

	deployment, ok := s.deployments[deploymentId]
	if !ok {
		s.lock.Unlock()

		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Deployment not found: "+deploymentId)

		return
	}

	s.setStatusLocked(deployment, api.DeploymentDeploying)
	reply := cloneDeploymentLocked(deployment)

	s.lock.Unlock()

	utils.SendJSONReplyOK(w, reply)
}

func (s *Server) stopDeploymentHandler(w http.ResponseWriter, r *http.Request) {
	deploymentId := utils.ExtractPathVar(r, deploymentIdPathVar)

	s.lock.Lock()

	deployment, ok := s.deployments[deploymentId]
	if !ok {
		s.lock.Unlock()

		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Deployment not found: "+deploymentId)

		return
	}

	s.setStatusLocked(deployment, api.DeploymentTerminating)
	reply := cloneDeploymentLocked(deployment)

	s.lock.Unlock()

	utils.SendJSONReplyOK(w, reply)
}

func (s *Server) getApplicationsHandler(w http.ResponseWriter, _ *http.Request) {
	s.lock.Lock()

	applications := make(api.GetApplicationsResponseBody, 0, len(s.applications))
	for _, application := range s.applications {
		s.refreshApplicationLocked(application)
		applications = append(applications, cloneApplicationLocked(application))
	}

	s.lock.Unlock()

	utils.SendJSONReplyOK(w, applications)
}

func (s *Server) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	applicationId := utils.ExtractPathVar(r, applicationIdPathVar)

	s.lock.Lock()

	application, ok := s.applications[applicationId]
	if ok {
		s.refreshApplicationLocked(application)
		application = cloneApplicationLocked(application)
	}

	s.lock.Unlock()

	if !ok {
		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Application not found: "+applicationId)

		return
	}

	utils.SendJSONReplyOK(w, application)
}

func (s *Server) deleteApplicationHandler(w http.ResponseWriter, r *http.Request) {
	applicationId := utils.ExtractPathVar(r, applicationIdPathVar)

	s.lock.Lock()

	_, ok := s.applications[applicationId]
	if !ok {
		s.lock.Unlock()

		utils.SendProblem(w, http.StatusNotFound, "Resource Not Found",
			"Application not found: "+applicationId)

		return
	}

	delete(s.applications, applicationId)

	for deploymentId, deployment := range s.deployments {
		if deployment.ApplicationId == applicationId {
			delete(s.deployments, deploymentId)
		}
	}

	s.lock.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	var reqBody api.SignupRequestBody

	err := json.NewDecoder(r.Body).Decode(&reqBody)
	if err != nil || reqBody.Email == "" || reqBody.Password == "" {
		utils.SendProblem(w, http.StatusBadRequest, "Validation Failed",
			"Signup requires an email and a password")

		return
	}

	// Confirmation happens out of band; the account is not signed in here.
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) passwordResetHandler(w http.ResponseWriter, r *http.Request) {
	var reqBody api.PasswordResetRequestBody

	err := json.NewDecoder(r.Body).Decode(&reqBody)
	if err != nil || reqBody.Email == "" {
		utils.SendProblem(w, http.StatusBadRequest, "Validation Failed",
			"Password reset requires an email")

		return
	}

	w.WriteHeader(http.StatusAccepted)
}
