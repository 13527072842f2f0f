package model

// LogRequest is one entry of the request log.
type LogRequest struct {
	BaseModel
	URL       string         `json:"url"`
	Method    string         `json:"method"`
	Status    int            `json:"status"`
	Auth      string         `json:"auth"`
	RemoteIP  string         `json:"remoteIp"`
	UserIP    string         `json:"userIp"`
	Referer   string         `json:"referer"`
	UserAgent string         `json:"userAgent"`
	Meta      map[string]any `json:"meta"`
}

// LogStat is the request count for one hourly bucket.
type LogStat struct {
	Total int    `json:"total"`
	Date  string `json:"date"`
}
