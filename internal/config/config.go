package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, pricing collector,
// registration lookups, cache, trust taxonomy, tokens and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request.
		// It must exceed the pricing timeout so that slow providers still produce a report.
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"15s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Pricing configures the registrar storefront collector
	Pricing struct {
		// Timeout bounds each provider fetch
		Timeout time.Duration `env:"PRICING_TIMEOUT" env-default:"8s" yaml:"timeout"`
		// UserAgent overrides the browser-like user agent sent to providers
		UserAgent string `env:"PRICING_USER_AGENT" yaml:"userAgent"`
		// MaxBodyBytes caps how much of a provider page is read
		MaxBodyBytes int64 `env:"PRICING_MAX_BODY_BYTES" env-default:"2097152" yaml:"maxBodyBytes"`
		// RatePerSecond caps outbound requests per provider across all requests, 0 disables the limit
		RatePerSecond float64 `env:"PRICING_RATE_PER_SECOND" yaml:"ratePerSecond"`
		// Burst is the outbound burst size per provider
		Burst int `env:"PRICING_BURST" env-default:"4" yaml:"burst"`
		// CacheMaxAge is advertised in the Cache-Control header of pricing responses
		CacheMaxAge time.Duration `env:"PRICING_CACHE_MAX_AGE" env-default:"5m" yaml:"cacheMaxAge"`
	} `yaml:"pricing"`

	// Registry configures registration metadata lookups
	Registry struct {
		// LookupTimeout bounds the registration lookup of one trust analysis
		LookupTimeout time.Duration `env:"REGISTRY_LOOKUP_TIMEOUT" env-default:"5s" yaml:"lookupTimeout"`
		// RDAPFallbackURL is used for TLDs without a known RDAP endpoint
		RDAPFallbackURL string `env:"REGISTRY_RDAP_FALLBACK_URL" env-default:"https://rdap.org/" yaml:"rdapFallbackURL"`
		// DisableWHOIS turns the WHOIS source off
		DisableWHOIS bool `env:"REGISTRY_DISABLE_WHOIS" yaml:"disableWhois"`
		// DisableNSInference turns registrar inference from NS records off
		DisableNSInference bool `env:"REGISTRY_DISABLE_NS_INFERENCE" yaml:"disableNSInference"`
		// DNSServer is the resolver queried for NS records
		DNSServer string `env:"REGISTRY_DNS_SERVER" env-default:"1.1.1.1:53" yaml:"dnsServer"`
		// CacheTTL is how long registrations are cached when Redis is configured
		CacheTTL time.Duration `env:"REGISTRY_CACHE_TTL" env-default:"24h" yaml:"cacheTTL"`
	} `yaml:"registry"`

	// Redis contains the optional registration cache connection settings
	Redis struct {
		// Addr is the Redis address; empty disables the cache
		Addr string `env:"REDIS_ADDR" yaml:"addr"`
		// Username for Redis ACL authentication
		Username string `env:"REDIS_USERNAME" yaml:"username"`
		// Password for Redis authentication
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		// DB is the logical database number
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
		// Timeout applies to dial, read and write operations
		Timeout time.Duration `env:"REDIS_TIMEOUT" env-default:"500ms" yaml:"timeout"`
	} `yaml:"redis"`

	// Trust configures the trust engine
	Trust struct {
		// TaxonomyFile is an optional YAML file extending the classification tables and weights
		TaxonomyFile string `env:"TRUST_TAXONOMY_FILE" yaml:"taxonomyFile"`
	} `yaml:"trust"`

	// JWT contains the keys used to verify and mint bearer tokens
	JWT struct {
		// PublicKey verifies API tokens; empty disables authentication
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey signs development tokens with the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// When the file does not exist the configuration is read from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
