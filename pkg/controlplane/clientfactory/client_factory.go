package clientfactory

import (
	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
	"github.com/nexus-weaver/weaver-go/pkg/controlplane/client"
	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

type ClientFactory struct{}

func (cf *ClientFactory) New(p *pipeline.Pipeline) controlplane.Client {
	return client.NewControlPlaneClient(p)
}
