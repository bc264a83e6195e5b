// Package models defines the JSON request and response bodies of the API.
package models

import "encoding/json"

// LoginRequest carries the credentials for /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by /api/login on success.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// VerifyResponse reports the authentication state of the caller.
type VerifyResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Error         string `json:"error,omitempty"`
}

// LogoutResponse is returned by /api/logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaveRequest carries the artifacts for /api/save. Data is any JSON value;
// Image is a base64 data URL. At least one must be present.
type SaveRequest struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Image    string          `json:"image,omitempty"`
	Filename string          `json:"filename,omitempty"`
}

// JSONResult describes the outcome of persisting the JSON artifact.
type JSONResult struct {
	Key      string `json:"key"`
	BackedUp bool   `json:"backedUp"`
	Pruned   int    `json:"pruned"`
}

// ImageResult describes the outcome of persisting the image artifact.
type ImageResult struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	URL         string `json:"url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SaveResults groups the per-artifact outcomes.
type SaveResults struct {
	JSON  *JSONResult  `json:"json,omitempty"`
	Image *ImageResult `json:"image,omitempty"`
}

// SaveResponse is returned by /api/save.
type SaveResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Results SaveResults `json:"results"`
}

// ErrorResponse is the generic failure body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
