// Package types contains the wire shapes shared by the HTTP API and its clients.
package types

// Entry is one ranked product as returned by POST /upload.
type Entry struct {
	Product string  `json:"Product"`
	Rank    int     `json:"rank"`
	OutOf10 float64 `json:"out of 10"`
	Top7    int     `json:"top7"`
}

// RankingResponse is the success payload of POST /upload.
type RankingResponse struct {
	Success  bool    `json:"success"`
	Data     []Entry `json:"data"`
	Filename string  `json:"filename"`
}

// ErrorResponse is the failure payload of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
