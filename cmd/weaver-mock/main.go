package main

import (
	"flag"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nexus-weaver/weaver-go/internal/controlplane"
	"github.com/nexus-weaver/weaver-go/internal/utils"
	cp "github.com/nexus-weaver/weaver-go/pkg/controlplane"
)

func main() {
	debug := flag.Bool("d", false, "add debug logs")
	listenAddr := flag.String("l", utils.LocalhostAddr, "address to listen on")
	port := flag.Int("p", cp.Port, "port to listen on")
	username := flag.String("u", "admin", "accepted username")
	password := flag.String("s", "admin", "accepted password")
	advanceEvery := flag.Duration("a", 2*time.Second, "status progression interval")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	server := controlplane.NewServer(*username, *password)

	go func() {
		ticker := time.NewTicker(*advanceEvery)
		for {
			<-ticker.C
			server.Advance()
		}
	}()

	utils.StartServer("control-plane-mock", *listenAddr, *port, server.Router())
}
