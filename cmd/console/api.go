package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/rando-engine/internal/handlers"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// call sends body (if any) to path and decodes a 2xx response into out.
func call(client *http.Client, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func listWorlds(client *http.Client, baseURL string) ([]string, error) {
	var resp handlers.WorldsResponse
	if err := call(client, http.MethodGet, baseURL+"/v1/worlds", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Worlds, nil
}

func listItems(client *http.Client, baseURL, world string) (*handlers.ItemsResponse, error) {
	var resp handlers.ItemsResponse
	if err := call(client, http.MethodGet, baseURL+"/v1/worlds/"+world+"/items", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func resolveAbilities(client *http.Client, baseURL string, q *handlers.QueryRequest) (*handlers.AbilitiesResponse, error) {
	var resp handlers.AbilitiesResponse
	if err := call(client, http.MethodPost, baseURL+"/v1/abilities", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func queryLocations(client *http.Client, baseURL string, q *handlers.QueryRequest) (*handlers.LocationsResponse, error) {
	var resp handlers.LocationsResponse
	if err := call(client, http.MethodPost, baseURL+"/v1/locations", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func queueJob(client *http.Client, baseURL string, q *handlers.QueryRequest) (*handlers.JobResponse, error) {
	var resp handlers.JobResponse
	if err := call(client, http.MethodPost, baseURL+"/v1/jobs", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
