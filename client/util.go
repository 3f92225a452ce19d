package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kestrel-uas/kestrel/drone"
	"github.com/kestrel-uas/kestrel/mission"
	"github.com/kestrel-uas/kestrel/model"
)

func handleInvalidResponse(err error) error {
	return fmt.Errorf("response from kestrel API was wrong format: %v", err)
}

// handleErrorResponse converts a structured error payload back into the
// matching typed error so callers can switch on it.
func handleErrorResponse(responseBody []byte) error {
	var errorResponse model.Error
	err := json.Unmarshal(responseBody, &errorResponse)
	if err != nil {
		return handleInvalidResponse(err)
	}
	switch errorResponse.Type {
	case "mission.NotFoundError":
		err = &mission.NotFoundError{}
	case "drone.NotFoundError":
		err = &drone.NotFoundError{}
	case "model.DroneUnavailableError":
		err = &model.DroneUnavailableError{}
	case "model.MissionActiveError":
		err = &model.MissionActiveError{}
	case "model.DroneInUseError":
		err = &model.DroneInUseError{}
	default:
		err = fmt.Errorf(errorResponse.Message)
	}
	return err
}

func parseResponse(resp *http.Response, parsedResponse interface{}) error {
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return handleInvalidResponse(err)
	}
	if resp.StatusCode != 200 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("reached the maximum number of 429 error responses (100) when making request to " + resp.Request.URL.String())
		} else {
			return handleErrorResponse(responseBody)
		}
	}
	err = json.Unmarshal(responseBody, parsedResponse)
	if err != nil {
		return handleInvalidResponse(err)
	}
	return err
}
