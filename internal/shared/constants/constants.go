package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
	// HistoryDirPerm restricts the scan history directory to the owning user.
	HistoryDirPerm fs.FileMode = 0o750
	// HistoryFilePerm restricts scan history records to the owning user.
	HistoryFilePerm fs.FileMode = 0o600
)

const (
	// MaxBodyBytes caps how many bytes of a page body the fetcher reads.
	MaxBodyBytes = 2 << 20
	// MaxRedirects bounds how many redirects a single fetch follows.
	MaxRedirects = 10
	// TLSSoonExpiryWindow warns when a certificate expires inside this window.
	TLSSoonExpiryWindow = 30 * 24 * time.Hour
	// DefaultUserAgent identifies the analyzer to the sites it fetches.
	DefaultUserAgent = "sitegrade/1.0 (+https://github.com/sitegrade/sitegrade-cli)"
	// ExternalLinkSample is how many distinct external hosts get probed per run.
	ExternalLinkSample = 10
)

const (
	// DefaultTimeout is the per-request timeout for page fetches.
	DefaultTimeout = 15 * time.Second
	// DefaultConcurrency bounds parallel category checks and parallel targets.
	DefaultConcurrency = 4
	// DefaultRatePerSec is the shared outbound requests-per-second budget.
	DefaultRatePerSec = 10
)

const (
	// DefaultAPIAddr is where the REST API listens unless overridden.
	DefaultAPIAddr = "127.0.0.1:8080"
	// DefaultAPIRateLimit is the per-client request rate for the REST API.
	DefaultAPIRateLimit = 10
	// DefaultAPIRateBurst is the per-client burst allowance for the REST API.
	DefaultAPIRateBurst = 20
)
