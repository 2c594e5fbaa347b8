package cloudflare

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordedRequest captures what the fake API server received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv, &requests
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()

	client, err := NewSDKClient(ClientConfig{
		Email:   "admin@example.com",
		APIKey:  "test-key",
		BaseURL: baseURL + "/client/v4/",
	})
	if err != nil {
		t.Fatalf("NewSDKClient() failed: %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewSDKClient_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{name: "missing email", cfg: ClientConfig{APIKey: "key"}},
		{name: "missing key", cfg: ClientConfig{Email: "admin@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSDKClient(tt.cfg); err == nil {
				t.Fatal("NewSDKClient() should fail without credentials")
			}
		})
	}
}

func TestSDKClient_ListZones(t *testing.T) {
	srv, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"errors":   []any{},
			"messages": []any{},
			"result": []map[string]string{
				{"id": "zid-a", "name": "a.com", "status": "active"},
				{"id": "zid-b", "name": "b.com", "status": "pending"},
			},
			"result_info": map[string]int{
				"page": 1, "per_page": 50, "count": 2, "total_count": 2, "total_pages": 1,
			},
		})
	})

	client := newTestClient(t, srv.URL)
	page, err := client.ListZones(context.Background(), ZoneListParams{Match: "all", Order: "name", Status: "active", Page: 1, PerPage: 50})
	if err != nil {
		t.Fatalf("ListZones() failed: %v", err)
	}

	if len(page.Result) != 2 || page.Result[0].Name != "a.com" || page.Result[1].ID != "zid-b" {
		t.Fatalf("ListZones() result = %+v", page.Result)
	}
	if page.ResultInfo == nil || page.ResultInfo.TotalCount != 2 || page.ResultInfo.TotalPages != 1 {
		t.Fatalf("ListZones() result_info = %+v", page.ResultInfo)
	}

	if len(*requests) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(*requests))
	}
	req := (*requests)[0]
	if req.Method != http.MethodGet || req.Path != "/client/v4/zones" {
		t.Errorf("request = %s %s, want GET /client/v4/zones", req.Method, req.Path)
	}
	if req.Query != "match=all&order=name&page=1&per_page=50&status=active" {
		t.Errorf("query = %q", req.Query)
	}
	if req.Header.Get("X-Auth-Email") != "admin@example.com" {
		t.Errorf("X-Auth-Email = %q", req.Header.Get("X-Auth-Email"))
	}
	if req.Header.Get("X-Auth-Key") != "test-key" {
		t.Errorf("X-Auth-Key = %q", req.Header.Get("X-Auth-Key"))
	}
}

func TestSDKClient_CreateDNSRecord(t *testing.T) {
	srv, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"errors":  []any{},
			"result":  map[string]string{"id": "rec-1"},
		})
	})

	client := newTestClient(t, srv.URL)
	record := NewCAARecord("example.com", "letsencrypt.org", CAATagIssueWild)

	env, err := client.CreateDNSRecord(context.Background(), "zid", record)
	if err != nil {
		t.Fatalf("CreateDNSRecord() failed: %v", err)
	}
	if !env.Success {
		t.Fatal("CreateDNSRecord() envelope should be successful")
	}

	req := (*requests)[0]
	if req.Method != http.MethodPost || req.Path != "/client/v4/zones/zid/dns_records" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}

	var body CAARecord
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body != record {
		t.Errorf("request body = %+v, want %+v", body, record)
	}
}

func TestSDKClient_PatchZoneSetting(t *testing.T) {
	srv, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "errors": []any{}})
	})

	client := newTestClient(t, srv.URL)
	_, err := client.PatchZoneSetting(context.Background(), "zid", "/ssl/universal/settings", map[string]string{
		"certificate_authority": "ssl_com",
	})
	if err != nil {
		t.Fatalf("PatchZoneSetting() failed: %v", err)
	}

	req := (*requests)[0]
	if req.Method != http.MethodPatch || req.Path != "/client/v4/zones/zid/ssl/universal/settings" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if string(req.Body) != `{"certificate_authority":"ssl_com"}` {
		t.Errorf("request body = %s", req.Body)
	}
}

func TestSDKClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     map[string]any
		wantKind Kind
	}{
		{
			name:     "429 is rate limited",
			status:   http.StatusTooManyRequests,
			body:     map[string]any{"success": false, "errors": []map[string]any{{"code": 10000, "message": "rate limited"}}, "messages": []any{}},
			wantKind: KindRateLimited,
		},
		{
			name:     "already exists code",
			status:   http.StatusBadRequest,
			body:     map[string]any{"success": false, "errors": []map[string]any{{"code": 81058, "message": "An identical record already exists."}}, "messages": []any{}},
			wantKind: KindAlreadyExists,
		},
		{
			name:     "plain 403 is http",
			status:   http.StatusForbidden,
			body:     map[string]any{"success": false, "errors": []map[string]any{{"code": 9109, "message": "Unauthorized"}}, "messages": []any{}},
			wantKind: KindHTTP,
		},
		{
			name:     "200 with success=false is application",
			status:   http.StatusOK,
			body:     map[string]any{"success": false, "errors": []map[string]any{{"code": 1004, "message": "DNS Validation Error"}}},
			wantKind: KindApplication,
		},
		{
			name:     "200 with code 971 is rate limited",
			status:   http.StatusOK,
			body:     map[string]any{"success": false, "errors": []map[string]any{{"code": 971, "message": "Please wait"}}},
			wantKind: KindRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			client := newTestClient(t, srv.URL)
			_, err := client.CreateDNSRecord(context.Background(), "zid", NewCAARecord("example.com", "ssl.com", CAATagIssue))
			if err == nil {
				t.Fatal("CreateDNSRecord() should fail")
			}
			if got := Classify(err); got != tt.wantKind {
				t.Errorf("Classify() = %v, want %v (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestSDKClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := newTestClient(t, baseURL)
	_, err := client.ListZones(context.Background(), ZoneListParams{Page: 1})
	if err == nil {
		t.Fatal("ListZones() should fail against a closed server")
	}
	if got := Classify(err); got != KindTransport {
		t.Errorf("Classify() = %v, want %v (err: %v)", got, KindTransport, err)
	}
}

func TestZoneListParams_SDKQuery(t *testing.T) {
	tests := []struct {
		name   string
		params ZoneListParams
		want   string
	}{
		{
			name:   "listing defaults",
			params: ZoneListParams{Match: "all", Order: "name", Page: 2, PerPage: 50},
			want:   "match=all&order=name&page=2&per_page=50",
		},
		{
			name:   "filters",
			params: ZoneListParams{Name: "example.com", Status: "pending", Direction: "desc"},
			want:   "direction=desc&name=example.com&status=pending",
		},
		{
			name:   "zero values are omitted",
			params: ZoneListParams{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.sdkParams().URLQuery().Encode(); got != tt.want {
				t.Errorf("URLQuery().Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSDKClient_ListZonesApplicationError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"errors":  []map[string]any{{"code": 1001, "message": "invalid zone filter"}},
			"result":  []any{},
		})
	})

	client := newTestClient(t, srv.URL)
	page, err := client.ListZones(context.Background(), ZoneListParams{Page: 1})
	if err == nil {
		t.Fatal("ListZones() should fail on success=false")
	}
	if got := Classify(err); got != KindApplication {
		t.Errorf("Classify() = %v, want %v", got, KindApplication)
	}
	if page == nil || page.Success {
		t.Errorf("ListZones() page = %+v, want the failed envelope", page)
	}
}
