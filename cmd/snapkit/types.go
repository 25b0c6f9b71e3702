package main

import (
	"github.com/snapkit/snapkit/internal/catalog"
)

// ErrorResponse is the JSON body written for failed commands.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ScanResult is the JSON response for snapkit scan.
type ScanResult struct {
	Source string `json:"source"` // "registry" or "mock"
	Found  int    `json:"found"`
	Added  int    `json:"added"`
	Total  int    `json:"total"`
}

// PinResponse is the JSON response for snapkit pin.
type PinResponse struct {
	Status string             `json:"status"` // "pinned" or "already_pinned"
	Pin    *catalog.PinnedApp `json:"pin"`
}

// RunResponse is the JSON response for snapkit run.
type RunResponse struct {
	Status  string `json:"status"`
	PinID   int64  `json:"pin_id"`
	Command string `json:"command"`
}

// CopyResponse is the JSON response for snapkit copy.
type CopyResponse struct {
	Status string       `json:"status"`
	Kind   catalog.Kind `json:"kind"`
	ID     int64        `json:"id"`
	Text   string       `json:"text"`
}

// TagResponse is the JSON response for snapkit tag.
type TagResponse struct {
	Status string       `json:"status"`
	Kind   catalog.Kind `json:"kind"`
	ID     int64        `json:"id"`
	Tags   string       `json:"tags"`
}
