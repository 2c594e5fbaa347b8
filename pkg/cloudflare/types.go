package cloudflare

import "encoding/json"

// Zone represents a Cloudflare zone as returned by the zone listing.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ResponseError is a single entry of the errors/messages arrays in a Cloudflare response.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the uniform response wrapper returned by every Cloudflare v4 endpoint.
type Envelope struct {
	Success  bool            `json:"success"`
	Errors   []ResponseError `json:"errors"`
	Messages []ResponseError `json:"messages,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// ResultInfo carries pagination details for list endpoints.
type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// ZonePage is one page of the zone listing.
type ZonePage struct {
	Success    bool            `json:"success"`
	Errors     []ResponseError `json:"errors"`
	Messages   []ResponseError `json:"messages,omitempty"`
	Result     []Zone          `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info,omitempty"`
}

// ZoneListParams are the query parameters accepted by GET /zones.
// Zero values are omitted from the query string.
type ZoneListParams struct {
	Name      string
	Match     string // any, all
	Status    string // initializing, pending, active, moved
	Order     string // name, status, account.id, account.name
	Direction string // asc, desc
	Page      int
	PerPage   int
}

// CAATag is the tag of a CAA record.
type CAATag string

const (
	// CAATagIssue authorizes a CA to issue regular certificates.
	CAATagIssue CAATag = "issue"

	// CAATagIssueWild authorizes a CA to issue wildcard certificates.
	CAATagIssueWild CAATag = "issuewild"
)

// CAAData is the structured data of a CAA record.
type CAAData struct {
	Flags int    `json:"flags"`
	Tag   CAATag `json:"tag"`
	Value string `json:"value"`
}

// CAARecord is the request body for creating a CAA record.
type CAARecord struct {
	Type string  `json:"type"`
	Name string  `json:"name"`
	Data CAAData `json:"data"`
}

// NewCAARecord builds a CAA record authorizing authority for name.
func NewCAARecord(name, authority string, tag CAATag) CAARecord {
	return CAARecord{
		Type: "CAA",
		Name: name,
		Data: CAAData{
			Flags: 0,
			Tag:   tag,
			Value: authority,
		},
	}
}
