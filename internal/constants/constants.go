package constants

const (
	// User validation constants
	MinUsernameLength = 3
	MaxUsernameLength = 32

	// Traffic constants
	BytesInGB = 1024 * 1024 * 1024

	// Network budgets (seconds)
	ConnectTimeout  = 10
	RequestTimeout  = 30
	IdleConnTimeout = 90
	MaxIdleConns    = 10

	// Session cache constants
	SessionCacheExpiration = 30 // minutes
	SessionCacheCleanup    = 10 // minutes

	// State cache constants
	StateCacheExpiration = 30 // minutes
	StateCacheCleanup    = 10 // minutes

	// QR rendering
	QRCodeSize = 256

	// Formatting constants
	MaxEmailDisplayLength = 17
	MaxEmailSuffixLength  = 14
	TimestampFormat       = "2006-01-02 15:04:05"
	DateFormat            = "2006-01-02"
)
