package utils

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

func ExtractPathVar(r *http.Request, varName string) (varValue string) {
	vars := mux.Vars(r)

	var ok bool

	varValue, ok = vars[varName]
	if !ok {
		err := errors.Errorf("var %s was not in request path", varName)
		panic(err)
	}

	return
}
