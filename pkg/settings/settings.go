// Package settings describes the per-zone setting mutations applied after the
// CAA records, each a single PATCH against a zone sub-resource.
package settings

import (
	"fmt"
	"slices"
)

const (
	// NameSSLCertificateAuthority selects the Universal SSL certificate authority.
	NameSSLCertificateAuthority = "ssl_ca"

	// NameTieredCache enables Tiered Cache Smart Topology.
	NameTieredCache = "tiered_cache"

	// NameSSLRecommendation sets the SSL/TLS recommender mode to strict.
	NameSSLRecommendation = "ssl_recommendation"
)

// Certificate authorities accepted by the Universal SSL settings endpoint.
const (
	CertificateAuthoritySSLCom      = "ssl_com"
	CertificateAuthorityLetsEncrypt = "lets_encrypt"
	CertificateAuthorityGoogle      = "google"
	CertificateAuthoritySectigo     = "sectigo"
)

// ValidCertificateAuthorities lists the accepted Universal SSL certificate authorities.
var ValidCertificateAuthorities = []string{
	CertificateAuthoritySSLCom,
	CertificateAuthorityLetsEncrypt,
	CertificateAuthorityGoogle,
	CertificateAuthoritySectigo,
}

// DefaultSteps are the settings applied when the run file does not name any.
var DefaultSteps = []string{NameSSLCertificateAuthority, NameTieredCache}

// Setting is a single PATCH against zones/{id}/{Path}.
type Setting struct {
	Name        string
	Path        string
	Payload     any
	Description string
}

// SSLCertificateAuthority returns the setting that selects the Universal SSL CA.
func SSLCertificateAuthority(ca string) (Setting, error) {
	if !slices.Contains(ValidCertificateAuthorities, ca) {
		return Setting{}, fmt.Errorf("invalid certificate authority %q, must be one of: %v", ca, ValidCertificateAuthorities)
	}

	return Setting{
		Name:        NameSSLCertificateAuthority,
		Path:        "ssl/universal/settings",
		Payload:     map[string]string{"certificate_authority": ca},
		Description: fmt.Sprintf("SSL CA updated to %q", ca),
	}, nil
}

// TieredCacheSmartTopology returns the setting that turns on Tiered Cache Smart Topology.
func TieredCacheSmartTopology() Setting {
	return Setting{
		Name:        NameTieredCache,
		Path:        "cache/tiered_cache_smart_topology_enable",
		Payload:     map[string]string{"value": "on"},
		Description: "Tiered Cache Smart Topology enabled",
	}
}

// SSLRecommendationStrict returns the setting that sets the SSL recommendation mode to strict.
func SSLRecommendationStrict() Setting {
	return Setting{
		Name:        NameSSLRecommendation,
		Path:        "ssl/recommendation",
		Payload:     map[string]string{"value": "strict"},
		Description: `SSL recommendation set to "strict"`,
	}
}
