package api

import (
	"github.com/platinummonkey/envfile/pkg/cache"
	"github.com/platinummonkey/envfile/pkg/envfile"
)

// VarResponse is the body of GET /v1/vars/{key}.
type VarResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// VarsResponse is the JSON body of GET /v1/vars.
type VarsResponse struct {
	Entries []envfile.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// ReloadResponse is the body of POST /v1/reload.
type ReloadResponse struct {
	Files   []string `json:"files"`
	Entries int      `json:"entries"`
}

// PublishResponse is the body of POST /v1/publish.
type PublishResponse struct {
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}

// StatsResponse is the body of GET /v1/stats.
type StatsResponse struct {
	Entries     int          `json:"entries"`
	Capacity    int          `json:"capacity"`
	Initialized bool         `json:"initialized"`
	Cache       *cache.Stats `json:"cache,omitempty"`
}
