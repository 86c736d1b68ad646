package connectors

import (
	"context"
	"strings"

	"github.com/lukehargrove/channelstock-backend/pkg/config"
	"github.com/lukehargrove/channelstock-backend/pkg/enums"
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

// ListingRef identifies one listing on an external platform.
type ListingRef struct {
	PlatformID string
	SKU        string
}

// Connector is the uniform surface over one sales channel's inventory API.
// Implementations translate quantity reads/writes into platform calls and
// normalize failures into coded errors.
type Connector interface {
	Platform() enums.Platform
	GetQuantity(ctx context.Context, ref ListingRef) (int, error)
	SetQuantity(ctx context.Context, ref ListingRef, quantity int) error
}

// Registry resolves the connector for a platform.
type Registry struct {
	connectors map[enums.Platform]Connector
}

// NewRegistry builds a registry from the provided connectors. Duplicate
// platforms are rejected.
func NewRegistry(conns ...Connector) (*Registry, error) {
	registry := &Registry{connectors: make(map[enums.Platform]Connector, len(conns))}
	for _, conn := range conns {
		if conn == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "nil connector")
		}
		platform := conn.Platform()
		if !platform.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "connector has unknown platform "+string(platform))
		}
		if _, exists := registry.connectors[platform]; exists {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "duplicate connector for "+string(platform))
		}
		registry.connectors[platform] = conn
	}
	return registry, nil
}

// Get returns the connector registered for platform.
func (r *Registry) Get(platform enums.Platform) (Connector, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "connector registry not configured")
	}
	conn, ok := r.connectors[platform]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no connector for "+string(platform))
	}
	return conn, nil
}

// Platforms lists the registered platforms.
func (r *Registry) Platforms() []enums.Platform {
	if r == nil {
		return nil
	}
	out := make([]enums.Platform, 0, len(r.connectors))
	for platform := range r.connectors {
		out = append(out, platform)
	}
	return out
}

// NewRegistryFromConfig wires a connector for every platform with a token
// configured. Platforms without credentials are left unregistered.
func NewRegistryFromConfig(cfg config.ConnectorsConfig, syncCfg config.SyncConfig) (*Registry, error) {
	var conns []Connector

	type entry struct {
		token   string
		baseURL string
		build   func(string, string) (Connector, error)
	}
	entries := []entry{
		{cfg.EtsyToken, cfg.EtsyBaseURL, func(url, token string) (Connector, error) {
			return NewEtsy(url, token, WithTimeout(syncCfg.ConnectorTimeout))
		}},
		{cfg.AmazonToken, cfg.AmazonBaseURL, func(url, token string) (Connector, error) {
			return NewAmazon(url, token, WithTimeout(syncCfg.ConnectorTimeout))
		}},
		{cfg.EbayToken, cfg.EbayBaseURL, func(url, token string) (Connector, error) {
			return NewEbay(url, token, WithTimeout(syncCfg.ConnectorTimeout))
		}},
		{cfg.ShopifyToken, cfg.ShopifyBaseURL, func(url, token string) (Connector, error) {
			return NewShopify(url, token, WithTimeout(syncCfg.ConnectorTimeout))
		}},
	}

	for _, e := range entries {
		if strings.TrimSpace(e.token) == "" {
			continue
		}
		conn, err := e.build(e.baseURL, e.token)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	return NewRegistry(conns...)
}
