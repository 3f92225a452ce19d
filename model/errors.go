package model

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kestrel-uas/kestrel/database"
	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
)

type TooManyRequestsError struct{}

func (e *TooManyRequestsError) Error() string {
	return "too many requests"
}

// DroneUnavailableError blocks mission start when any referenced drone is
// not available. The check is all-or-nothing: no writes happen at all.
type DroneUnavailableError struct {
	DroneIDs []string
}

func (e *DroneUnavailableError) Error() string {
	return fmt.Sprintf("cannot start mission: drones not available: %v", strings.Join(e.DroneIDs, ", "))
}

// MissionActiveError blocks deletion of a mission that is currently flying.
type MissionActiveError struct {
	Id string
}

func (e *MissionActiveError) Error() string {
	return fmt.Sprintf("cannot delete mission '%v' while it is in progress", e.Id)
}

// DroneInUseError blocks deletion of a drone that an active mission still
// references; deleting it would leave a dangling reference.
type DroneInUseError struct {
	DroneId   string
	MissionId string
}

func (e *DroneInUseError) Error() string {
	return fmt.Sprintf("cannot delete drone '%v': referenced by active mission '%v'", e.DroneId, e.MissionId)
}

// ErrorCode maps an error to the HTTP status code it should be surfaced
// with. Unknown errors are internal and must not leak details to clients.
func ErrorCode(err error) int {
	switch err.(type) {
	case *mission.NotFoundError, *drone.NotFoundError:
		return http.StatusNotFound
	case *mission.InvalidTransitionError, *mission.ValidationError,
		*drone.StatusChangeError, *drone.ValidationError, *DroneUnavailableError:
		return http.StatusBadRequest
	case *MissionActiveError, *DroneInUseError:
		return http.StatusConflict
	case *database.TransactionFailedError, *TooManyRequestsError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
