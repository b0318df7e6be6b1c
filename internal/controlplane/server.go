package controlplane

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/internal/utils"
)

// Server is an in-memory control plane used by the CLI's dev mode and by
// package tests. It owns the status state machines; clients only ever observe
// them. Progression is driven explicitly through Advance so callers decide
// the pace.
type Server struct {
	lock sync.Mutex

	deployments  map[string]*api.DeploymentDTO
	applications map[string]*api.ApplicationDTO

	username string
	password string
	tokens   map[string]struct{}
}

func NewServer(username, password string) *Server {
	return &Server{
		deployments:  map[string]*api.DeploymentDTO{},
		applications: map[string]*api.ApplicationDTO{},
		username:     username,
		password:     password,
		tokens:       map[string]struct{}{},
	}
}

// AcceptToken registers a bearer token the server will treat as valid.
func (s *Server) AcceptToken(token string) {
	s.lock.Lock()
	s.tokens[token] = struct{}{}
	s.lock.Unlock()
}

// Router serves the full REST surface under the versioned prefix, gated by
// the credential check.
func (s *Server) Router() *mux.Router {
	router := utils.NewRouter(api.PrefixPath, s.routes())
	router.Use(s.authMiddleware)

	return router
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthExempt(r.URL.Path) || s.authorized(r) {
			next.ServeHTTP(w, r)

			return
		}

		utils.SendProblem(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if username, password, ok := r.BasicAuth(); ok {
		return username == s.username && password == s.password
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		s.lock.Lock()
		defer s.lock.Unlock()

		_, ok := s.tokens[strings.TrimPrefix(authHeader, "Bearer ")]

		return ok
	}

	return false
}

// Advance steps every deployment one stage through its status machine:
// PENDING -> DEPLOYING -> DEPLOYED and TERMINATING -> TERMINATED. Services
// progress with their deployment; process and node ids exist only between
// STARTING and STOPPING.
func (s *Server) Advance() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, deployment := range s.deployments {
		switch deployment.Status {
		case api.DeploymentPending:
			s.setStatusLocked(deployment, api.DeploymentDeploying)
		case api.DeploymentDeploying:
			s.setStatusLocked(deployment, api.DeploymentDeployed)
		case api.DeploymentTerminating:
			s.setStatusLocked(deployment, api.DeploymentTerminated)
		}
	}
}

func (s *Server) setStatusLocked(deployment *api.DeploymentDTO, status api.DeploymentStatus) {
	log.Debugf("deployment %s: %s -> %s", deployment.Id, deployment.Status, status)

	deployment.Status = status
	deployment.UpdatedAt = timestamp()

	for _, service := range deployment.Services {
		switch status {
		case api.DeploymentDeploying:
			service.Status = api.ServiceStarting
			service.ProcessId = strconv.Itoa(1000 + utils.GetRandInt(30000))
			service.NodeId = "node-" + utils.RandomString(6)
		case api.DeploymentDeployed:
			service.Status = api.ServiceRunning
		case api.DeploymentTerminating:
			service.Status = api.ServiceStopping
		case api.DeploymentTerminated:
			service.Status = api.ServiceStopped
			service.ProcessId = ""
			service.NodeId = ""
		case api.DeploymentFailed:
			service.Status = api.ServiceFailed
			service.ProcessId = ""
			service.NodeId = ""
		}
	}
}

// cloneDeploymentLocked returns a deep copy safe to marshal after the lock is
// released; the live object keeps mutating under Advance.
func cloneDeploymentLocked(deployment *api.DeploymentDTO) *api.DeploymentDTO {
	clone := *deployment
	clone.Services = make([]*api.ServiceDTO, len(deployment.Services))

	for i, service := range deployment.Services {
		serviceClone := *service
		clone.Services[i] = &serviceClone
	}

	return &clone
}

func cloneApplicationLocked(application *api.ApplicationDTO) *api.ApplicationDTO {
	clone := *application
	clone.Languages = append([]string(nil), application.Languages...)

	return &clone
}

func (s *Server) findApplicationLocked(name string) *api.ApplicationDTO {
	for _, application := range s.applications {
		if application.Name == name {
			return application
		}
	}

	return nil
}

func (s *Server) refreshApplicationLocked(application *api.ApplicationDTO) {
	count := 0
	active := 0
	languages := map[string]struct{}{}

	for _, deployment := range s.deployments {
		if deployment.ApplicationId != application.Id {
			continue
		}

		count++

		if deployment.Status == api.DeploymentDeployed {
			active++
		}

		for _, service := range deployment.Services {
			languages[service.Language] = struct{}{}
		}
	}

	application.DeploymentCount = count
	application.ActiveDeployments = active

	application.Languages = application.Languages[:0]
	for language := range languages {
		application.Languages = append(application.Languages, language)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newId() string {
	return uuid.New().String()
}
