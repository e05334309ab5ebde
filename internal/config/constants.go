package config

import "time"

const (
	AppName = "ordersdash"

	// EnvPrefix prefixes every environment variable, e.g. ORDERSDASH_SERVER_PORT
	EnvPrefix = "ORDERSDASH"

	DefaultPort           = 8501
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxUploadBytes = 64 << 20
	DefaultMaxDatasets    = 32

	// requests per second
	DefaultRateLimit = 20
	DefaultBurstSize = 40

	DefaultPrimaryFile   = "Summary.xlsx"
	DefaultSecondaryFile = "Secondary.xlsx"
	DefaultCacheEntries  = 16

	DefaultPreviewRows = 200

	DefaultCSVExportName  = "filtered_export.csv"
	DefaultXLSXExportName = "filtered_export.xlsx"
)

// ConfigFileLocations are searched in order when no config file is given
var ConfigFileLocations = []string{
	"ordersdash.yaml",
	"configs/ordersdash.yaml",
}
