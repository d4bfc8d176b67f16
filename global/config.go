package global

import (
	cfg "github.com/mailio/go-web3-kit/config"
)

// Conf global config
var Conf Config

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	Federation     FederationConfig `yaml:"federation"`
	CouchDB        CouchDBConfig    `yaml:"couchdb"`
	Prometheus     PrometheusConfig `yaml:"prometheus"`
	Redis          RedisConfig      `yaml:"redis"`
	RateLimit      RateLimitConfig  `yaml:"rateLimit"`
}

type FederationConfig struct {
	// canonical origin of this service (also the expected assertion audience)
	PublicURL      string `yaml:"publicUrl"`
	ServerKeysPath string `yaml:"serverKeysPath"`
	// relative paths this service advertises in its own declaration of support
	AuthenticationPath string `yaml:"authenticationPath"`
	ProvisioningPath   string `yaml:"provisioningPath"`

	DisablePrimarySupport   bool  `yaml:"disablePrimarySupport"`
	DiscoveryTimeoutMs      int64 `yaml:"discoveryTimeoutMs"`
	IdpOfflineGracePeriodMs int64 `yaml:"idpOfflineGracePeriodMs"`
	MaxDelegations          int   `yaml:"maxDelegations"`

	HttpProxy HttpProxyConfig   `yaml:"httpProxy"`
	ProxyIdps map[string]string `yaml:"proxyIdps"`
	// same format as SHIMMED_PRIMARIES: domain|origin|path[,domain|origin|path]
	ShimmedPrimaries string `yaml:"shimmedPrimaries"`
}

type HttpProxyConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CouchDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Scheme   string `yaml:"scheme"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// use the in-memory store instead of CouchDB (development only)
	InMemory bool `yaml:"inMemory"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond"`
}
