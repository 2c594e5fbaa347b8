// Package cloudflaretest provides a function-field mock of cloudflare.Client.
package cloudflaretest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
)

// MockClient is a mock implementation of cloudflare.Client for testing
type MockClient struct {
	ListZonesFunc        func(ctx context.Context, params cloudflare.ZoneListParams) (*cloudflare.ZonePage, error)
	CreateDNSRecordFunc  func(ctx context.Context, zoneID string, record cloudflare.CAARecord) (*cloudflare.Envelope, error)
	PatchZoneSettingFunc func(ctx context.Context, zoneID string, settingPath string, payload any) (*cloudflare.Envelope, error)
}

func (m *MockClient) ListZones(ctx context.Context, params cloudflare.ZoneListParams) (*cloudflare.ZonePage, error) {
	if m.ListZonesFunc != nil {
		return m.ListZonesFunc(ctx, params)
	}
	return nil, fmt.Errorf("ListZonesFunc not implemented")
}

func (m *MockClient) CreateDNSRecord(ctx context.Context, zoneID string, record cloudflare.CAARecord) (*cloudflare.Envelope, error) {
	if m.CreateDNSRecordFunc != nil {
		return m.CreateDNSRecordFunc(ctx, zoneID, record)
	}
	return nil, fmt.Errorf("CreateDNSRecordFunc not implemented")
}

func (m *MockClient) PatchZoneSetting(ctx context.Context, zoneID string, settingPath string, payload any) (*cloudflare.Envelope, error) {
	if m.PatchZoneSettingFunc != nil {
		return m.PatchZoneSettingFunc(ctx, zoneID, settingPath, payload)
	}
	return nil, fmt.Errorf("PatchZoneSettingFunc not implemented")
}

// OK returns a successful envelope.
func OK() *cloudflare.Envelope {
	return &cloudflare.Envelope{Success: true}
}

// RateLimited returns an HTTP 429 error as the SDK adapter would build it.
func RateLimited(op string) error {
	return cloudflare.NewError(op, http.StatusTooManyRequests, nil, nil)
}

// AlreadyExists returns the provider's "record already exists" error.
func AlreadyExists(op string) error {
	return cloudflare.NewError(op, http.StatusBadRequest, []cloudflare.ResponseError{
		{Code: cloudflare.CodeRecordAlreadyExists, Message: "An identical record already exists."},
	}, nil)
}

// ApplicationError returns a success=false envelope error with the given code.
func ApplicationError(op string, code int, message string) error {
	return cloudflare.NewError(op, http.StatusOK, []cloudflare.ResponseError{
		{Code: code, Message: message},
	}, nil)
}
