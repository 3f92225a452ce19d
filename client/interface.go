package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kestrel-uas/kestrel/model"
)

// healthCheck checks the health of the Kestrel API at the address provided and returns an error if the server
// cannot be reached or if the response is not exactly as expected
func healthCheck(baseUrl string) error {
	req, err := http.NewRequest("GET", baseUrl, nil)
	if err != nil {
		return err
	}
	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("server health check response has status code %v; expected 200", resp.StatusCode)
	}
	responseBody, err := io.ReadAll(resp.Body)
	var healthCheckData model.Success
	err = json.Unmarshal(responseBody, &healthCheckData)
	if err != nil {
		return fmt.Errorf("server health check response is not the expected format")
	}
	if healthCheckData.Message != "all systems green" {
		return fmt.Errorf("server health check response is not the expected message, got: " + healthCheckData.Message)
	}
	return nil
}

func (client *Client) request(method, path string, body []byte) *http.Response {
	url := client.BaseUrl + path
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		fmt.Println("Got an error creating request to url: " + url)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		panic(err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		// the record was contended or the rate limit was hit; wait and retry up to 100 times
		loopCounter := 0
		for resp.StatusCode == http.StatusTooManyRequests && loopCounter < 100 {
			time.Sleep(time.Millisecond * 100)
			loopCounter++

			// recreate request
			req, _ = http.NewRequest(method, url, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err = httpClient.Do(req)
			if err != nil {
				fmt.Println("Got an error when requesting url: " + url)
				panic(err)
			}
		}
	}
	return resp
}
func (client *Client) post(path string, body []byte) *http.Response {
	return client.request("POST", path, body)
}
func (client *Client) put(path string, body []byte) *http.Response {
	return client.request("PUT", path, body)
}
func (client *Client) get(path string) *http.Response {
	return client.request("GET", path, []byte{})
}
func (client *Client) delete(path string) *http.Response {
	return client.request("DELETE", path, []byte{})
}
