package config

const (
	defaultCatalogBaseURL     = "https://nsi.rosminzdrav.ru/port/rest"
	defaultCatalogDownloadURL = "https://nsi.rosminzdrav.ru/api/dataFiles"
	defaultRequestTimeout     = 30
	defaultOutputDir          = "."
	defaultRegistryPath       = "oid_dictionary.json"
	defaultHistoryPath        = "~/.local/share/refcat/history.db"
	defaultLogDir             = "~/.local/share/refcat/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			DownloadURL:    defaultCatalogDownloadURL,
			RequestTimeout: defaultRequestTimeout,
			// The catalog serves certificates that fail chain validation,
			// so verification is off unless explicitly re-enabled.
			InsecureSkipVerify: true,
		},
		Output: Output{
			Dir:          defaultOutputDir,
			RegistryPath: defaultRegistryPath,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
