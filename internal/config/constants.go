package config

const (
	// Server Defaults
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8100

	// Audit Defaults
	DefaultAuditTimeoutMs        = 25000
	DefaultSettleWindowMs        = 10000
	DefaultEnforcePolicy         = true
	DefaultMaxStorageFieldLength = 100
	DefaultMaxContentLength      = 5000000
	DefaultMaxConcurrentAudits   = 4
	DefaultSystemMemThreshold    = 0.9

	// Browser Defaults
	DefaultBrowserHeadless       = true
	DefaultBrowserViewportWidth  = 1920
	DefaultBrowserViewportHeight = 1080
	DefaultBrowserUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/85.0.4183.83 Safari/537.36"

	// Gatekeeper Defaults
	DefaultGatekeeperResolveTimeoutMs = 5000

	// Rate Limit Defaults
	DefaultRateLimitRequestsPerSecond = 10
	DefaultRateLimitBurst             = 20

	// EnvDev is the PAGECHECK_ENV value that turns policy enforcement off
	EnvDev = "dev"
)

// DefaultLoadStrategies is the fallback order of page load strategies
var DefaultLoadStrategies = []string{"networkidle", "domcontentloaded"}

// DefaultAllowedPorts are the explicit ports sub-requests may use
var DefaultAllowedPorts = []string{"80", "443"}
