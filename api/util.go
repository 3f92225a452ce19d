package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

// newId mints an identifier for a new mission or drone.
func newId() string {
	return uuid.NewString()
}

// handleError writes an error http response given an error object. Invalid
// transitions additionally carry the set of currently allowed actions so
// that clients can present them.
func handleError(err error, w http.ResponseWriter) {
	log.Error(err)

	code := model.ErrorCode(err)

	res := model.Error{
		Message: err.Error(),
		Type:    strings.Replace(fmt.Sprintf("%T", err), "*", "", 1),
		Code:    code,
	}
	if code == http.StatusInternalServerError {
		// unexpected errors must not leak internals
		res.Message = "internal error"
	}
	if transitionErr, ok := err.(*mission.InvalidTransitionError); ok {
		res.AllowedActions = make([]string, len(transitionErr.Allowed))
		for i, a := range transitionErr.Allowed {
			res.AllowedActions[i] = string(a)
		}
	}

	payload, _ := json.Marshal(res)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	w.Write(payload)
}

// writeJSON marshals the payload and writes a 200 response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		handleError(err, w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}
