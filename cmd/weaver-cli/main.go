package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
	"github.com/nexus-weaver/weaver-go/internal/config"
	"github.com/nexus-weaver/weaver-go/internal/dashboard"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane/clientfactory"
	"github.com/nexus-weaver/weaver-go/pkg/credentials"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
	"github.com/nexus-weaver/weaver-go/pkg/session"
)

var (
	store    credentials.Store
	pipe     *pipeline.Pipeline
	sessions *session.Manager
	client   controlplane.Client
	cache    = dashboard.NewSnapshotCache()
)

// consoleNotifier renders the notification channel on the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Success(message string) {
	fmt.Println("✓ " + message)
}

func (consoleNotifier) Error(message string) {
	fmt.Println("✗ " + message)
}

func main() {
	debug := flag.Bool("d", false, "add debug logs")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		sessionFile = credentials.DefaultSessionPath()
	}

	store = credentials.NewFileStore(sessionFile)
	pipe = pipeline.New(cfg.APIAddr, store, consoleNotifier{})
	sessions = session.NewManager(pipe, store, consoleNotifier{})
	client = (&clientfactory.ClientFactory{}).New(pipe)

	app := &cli.App{
		Name:  "weaver",
		Usage: "manage Nexus Weaver deployments",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and persist the session",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						log.Fatal("login: username password")
					}

					sessions.Rehydrate()

					return sessions.SignIn(c.Args().First(), c.Args().Get(1))
				},
			},
			{
				Name:  "logout",
				Usage: "sign out and clear the session",
				Action: func(c *cli.Context) error {
					sessions.Rehydrate()
					sessions.SignOut()

					return nil
				},
			},
			{
				Name:  "signup",
				Usage: "create a new account",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						log.Fatal("signup: email password")
					}

					return sessions.SignUp(c.Args().First(), c.Args().Get(1))
				},
			},
			{
				Name:  "reset-password",
				Usage: "send a password reset email",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("reset-password: email")
					}

					return sessions.ResetPassword(c.Args().First())
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "list deployments",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "app", Usage: "filter by application id"},
					&cli.StringFlag{Name: "status", Usage: "filter by deployment status"},
				},
				Action: func(c *cli.Context) error {
					requireSession()
					listDeployments(c.String("app"), c.String("status"))

					return nil
				},
			},
			{
				Name:  "get",
				Usage: "show one deployment",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("get: deployment_id")
					}

					requireSession()
					getDeployment(c.Args().First())

					return nil
				},
			},
			{
				Name:    "create",
				Aliases: []string{"c"},
				Usage:   "create a deployment from a weaver.yml manifest",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("create: manifest_file")
					}

					requireSession()
					createDeployment(c.Args().First())

					return nil
				},
			},
			{
				Name:    "delete",
				Aliases: []string{"del"},
				Usage:   "delete a deployment",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("delete: deployment_id")
					}

					requireSession()
					runMutation(dashboard.DeleteDeploymentMutation(client, c.Args().First()))

					return nil
				},
			},
			{
				Name:  "start",
				Usage: "start a deployment",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("start: deployment_id")
					}

					requireSession()
					runMutation(dashboard.StartDeploymentMutation(client, c.Args().First()))

					return nil
				},
			},
			{
				Name:  "stop",
				Usage: "stop a deployment",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("stop: deployment_id")
					}

					requireSession()
					runMutation(dashboard.StopDeploymentMutation(client, c.Args().First()))

					return nil
				},
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "follow one deployment until interrupted",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("watch: deployment_id")
					}

					requireSession()
					watchDeployment(c.Args().First())

					return nil
				},
			},
			{
				Name:  "apps",
				Usage: "manage applications",
				Subcommands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "list applications",
						Action: func(c *cli.Context) error {
							requireSession()
							listApplications()

							return nil
						},
					},
					{
						Name:  "get",
						Usage: "show one application",
						Action: func(c *cli.Context) error {
							if c.Args().Len() != 1 {
								log.Fatal("apps get: application_id")
							}

							requireSession()
							getApplication(c.Args().First())

							return nil
						},
					},
					{
						Name:    "delete",
						Aliases: []string{"del"},
						Usage:   "delete an application and its deployments",
						Action: func(c *cli.Context) error {
							if c.Args().Len() != 1 {
								log.Fatal("apps delete: application_id")
							}

							requireSession()
							runMutation(dashboard.DeleteApplicationMutation(client, c.Args().First()))

							return nil
						},
					},
				},
			},
		},
	}

	err = app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func requireSession() {
	if sessions.Rehydrate() != session.Authenticated {
		log.Fatal("not signed in, run: weaver login <username> <password>")
	}
}

func runMutation(mutation dashboard.Mutation) {
	coordinator := dashboard.NewCoordinator(cache, consoleNotifier{})

	_, err := coordinator.Run(mutation)
	if err != nil {
		os.Exit(1)
	}
}

func listDeployments(applicationId, status string) {
	var filters *controlplane.DeploymentFilters

	if applicationId != "" || status != "" {
		filters = &controlplane.DeploymentFilters{
			ApplicationId: applicationId,
			Status:        api.DeploymentStatus(status),
		}
	}

	deployments, err := client.ListDeployments(filters)
	if err != nil {
		os.Exit(1)
	}

	for _, deployment := range deployments {
		fmt.Printf("%-38s %-24s %-12s %s\n",
			deployment.Id, deployment.ApplicationName, deployment.Version, deployment.Status)
	}
}

func getDeployment(deploymentId string) {
	deployment, err := client.GetDeployment(deploymentId)
	if err != nil {
		os.Exit(1)
	}

	printDeployment(deployment)
}

func createDeployment(filename string) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		log.Fatal("error reading file: ", err)
	}

	var manifest api.ManifestYAML

	err = yaml.Unmarshal(fileBytes, &manifest)
	if err != nil {
		log.Fatal("invalid manifest: ", err)
	}

	reqBody, err := manifest.ToCreateRequest()
	if err != nil {
		log.Fatal(err)
	}

	coordinator := dashboard.NewCoordinator(cache, consoleNotifier{})

	result, err := coordinator.Run(dashboard.CreateDeploymentMutation(client, reqBody))
	if err != nil {
		os.Exit(1)
	}

	created := result.(*api.DeploymentDTO)
	fmt.Println("deployment id: " + created.Id)

	// The creation already invalidated the deployment keys, so this read is a
	// forced fetch of the server's view.
	payload, err := cache.ReadThrough(dashboard.DeploymentKey(created.Id), func() (interface{}, error) {
		return client.GetDeployment(created.Id)
	})
	if err != nil {
		os.Exit(1)
	}

	printDeployment(payload.(*api.DeploymentDTO))
}

func watchDeployment(deploymentId string) {
	poller := dashboard.NewPoller(cache, dashboard.DeploymentKey(deploymentId),
		func() (interface{}, error) {
			return client.GetDeployment(deploymentId)
		},
		func(payload interface{}) {
			printDeployment(payload.(*api.DeploymentDTO))
		})

	poller.Attach()
	defer poller.Detach()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
}

func listApplications() {
	applications, err := client.ListApplications()
	if err != nil {
		os.Exit(1)
	}

	for _, application := range applications {
		fmt.Printf("%-38s %-24s deployments=%d active=%d\n",
			application.Id, application.Name, application.DeploymentCount, application.ActiveDeployments)
	}
}

func getApplication(applicationId string) {
	application, err := client.GetApplication(applicationId)
	if err != nil {
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", application.Id, application.Name)

	if application.Description != "" {
		fmt.Println(application.Description)
	}

	fmt.Printf("deployments=%d active=%d languages=%v\n",
		application.DeploymentCount, application.ActiveDeployments, application.Languages)
}

func printDeployment(deployment *api.DeploymentDTO) {
	fmt.Printf("%s %s@%s [%s]\n",
		deployment.Id, deployment.ApplicationName, deployment.Version, deployment.Status)

	for _, service := range deployment.Services {
		line := fmt.Sprintf("  %-20s %-10s [%s]", service.Name, service.Language, service.Status)

		if service.ProcessId != "" {
			line += fmt.Sprintf(" pid=%s node=%s", service.ProcessId, service.NodeId)
		}

		fmt.Println(line)
	}
}
