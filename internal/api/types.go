package api

import "github.com/leapstack-labs/leapchat/pkg/core"

type sessionResponse struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Profile *core.DatasetProfile `json:"profile"`
	Turns   int                  `json:"turns"`
}

type turnRequest struct {
	Question string `json:"question"`
}

type turnResponse struct {
	Seq          int    `json:"seq"`
	Decision     string `json:"decision"`
	Synthesis    string `json:"synthesis,omitempty"`
	Output       string `json:"output,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	HasChart     bool   `json:"has_chart"`
	ChartURL     string `json:"chart_url,omitempty"`
}

type turnListResponse struct {
	Turns []turnListEntry `json:"turns"`
}

type turnListEntry struct {
	Seq      int    `json:"seq"`
	Question string `json:"question"`
	Decision string `json:"decision"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	HasChart bool   `json:"has_chart"`
}

type errorResponse struct {
	Error string `json:"error"`
}
