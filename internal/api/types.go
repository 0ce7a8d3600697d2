package api

import "github.com/samcharles93/twixread/internal/convert"

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type InspectRequest struct {
	Path     string `json:"path"`
	Scan     int    `json:"scan,omitempty"`
	Readout  int    `json:"readout,omitempty"`
	Channels int    `json:"channels,omitempty"`
}

type ConvertRequest struct {
	Input        string          `json:"input"`
	Output       string          `json:"output"`
	Extents      convert.Extents `json:"extents"`
	Acquisitions int             `json:"acquisitions,omitempty"`
}

type ConvertResponse struct {
	Output string `json:"output"`
	convert.Result
}
