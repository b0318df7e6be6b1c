package utils

import (
	"net/http"

	json "github.com/goccy/go-json"

	api "github.com/nexus-weaver/weaver-go/api/controlplane"
)

func SendJSONReplyOK(w http.ResponseWriter, replyContent interface{}) {
	SendJSONReplyStatus(w, http.StatusOK, replyContent)
}

func SendJSONReplyStatus(w http.ResponseWriter, status int, replyContent interface{}) {
	toSend, err := json.Marshal(replyContent)
	if err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(toSend)
	if err != nil {
		panic(err)
	}
}

// SendProblem writes an RFC 7807 body, the error shape every control plane
// endpoint uses.
func SendProblem(w http.ResponseWriter, status int, title, detail string) {
	SendJSONReplyStatus(w, status, &api.ProblemDetails{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
