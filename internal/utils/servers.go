package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	// LocalhostAddr contains the default interface address
	LocalhostAddr = "0.0.0.0"
)

type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// NewRouter builds a mux router serving the routes under prefixPath.
func NewRouter(prefixPath string, routes []Route) *mux.Router {
	router := mux.NewRouter().PathPrefix(prefixPath).Subrouter()

	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			HandlerFunc(route.HandlerFunc)
	}

	return router
}

// StartServer starts a server on the specified address and port serving the
// given handler.
func StartServer(serverName, listenAddr string, port int, handler http.Handler) {
	listenAddrPort := listenAddr + ":" + strconv.Itoa(port)

	log.Infof("%s server listening at %s...", serverName, listenAddrPort)
	log.Panic(http.ListenAndServe(listenAddrPort, handler))
}
