package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Wire shapes mirror the server's result envelopes.

type nodeJSON struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	Source string            `json:"source,omitempty"`
}

type statusJSON struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

type nodeResult struct {
	statusJSON
	Node *nodeJSON `json:"node,omitempty"`
}

type nodesResult struct {
	statusJSON
	Nodes []*nodeJSON    `json:"nodes"`
	Count int            `json:"count"`
	Depth map[string]int `json:"depth,omitempty"`
}

type pathResult struct {
	statusJSON
	Path []*nodeJSON `json:"path,omitempty"`
	Hops int         `json:"hops"`
}

type blastResult struct {
	statusJSON
	Root     *nodeJSON   `json:"root,omitempty"`
	Impacted []*nodeJSON `json:"impacted"`
	Teams    []*nodeJSON `json:"teams"`
}

type errorJSON struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// getJSON fetches path from the configured server and decodes the body
// into out. Result envelopes decode even on non-2xx statuses so the
// caller can act on the reason code.
func getJSON(path string, params map[string]string, out any) error {
	target := strings.TrimRight(serverURL, "/") + path
	if len(params) > 0 {
		values := url.Values{}
		for key, value := range params {
			values.Set(key, value)
		}
		target += "?" + values.Encode()
	}

	resp, err := httpClient.Get(target)
	if err != nil {
		return fmt.Errorf("cannot reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var e errorJSON
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			return fmt.Errorf("%s", e.Message)
		}
		return fmt.Errorf("bad request")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unexpected response from server: %w", err)
	}
	return nil
}
