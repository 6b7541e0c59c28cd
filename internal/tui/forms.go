package tui

import (
	"github.com/charmbracelet/huh"
)

func CreateRemixForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("endpoint").
				Title("Remix Endpoint").
				Description("URL of the PDF patch service").
				Value(&values.RemixEndpoint).
				Placeholder("https://example.com/api/v0/patch").
				Validate(ValidateEndpoint),

			huh.NewInput().
				Key("timeout").
				Title("Remix Timeout").
				Description("How long to wait for the patched PDF (e.g., 2m)").
				Value(&values.RemixTimeout).
				Placeholder("2m").
				Validate(ValidateDuration),
		),
	).WithTheme(GetTheme())
}

func CreateOutputForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("file").
				Title("Output File").
				Description("Where to save the remixed PDF").
				Value(&values.OutputFile).
				Placeholder("patched.pdf").
				Validate(ValidateOutputFile),

			huh.NewConfirm().
				Key("overwrite").
				Title("Overwrite Existing").
				Description("Overwrite existing files without --force").
				Value(&values.OutputOverwrite),
		),
	).WithTheme(GetTheme())
}

func CreateFetchForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("timeout").
				Title("Request Timeout").
				Description("HTTP timeout per source download (e.g., 30s, 1m)").
				Value(&values.FetchTimeout).
				Placeholder("90s").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("max_retries").
				Title("Max Retries").
				Description("Retries for transient download failures (0-10)").
				Value(&values.FetchMaxRetries).
				Placeholder("3").
				Validate(ValidateIntRange(0, 10)),

			huh.NewInput().
				Key("workers").
				Title("Workers").
				Description("Concurrent downloads (1-16)").
				Value(&values.FetchWorkers).
				Placeholder("4").
				Validate(ValidateIntRange(1, 16)),

			huh.NewInput().
				Key("user_agent").
				Title("User Agent").
				Description("Custom User-Agent header (leave empty for default)").
				Value(&values.UserAgent).
				Placeholder("Mozilla/5.0..."),
		),
	).WithTheme(GetTheme())
}

func CreateCacheForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enabled").
				Title("Enable Cache").
				Description("Cache downloaded source PDFs").
				Value(&values.CacheEnabled),

			huh.NewInput().
				Key("ttl").
				Title("Cache TTL").
				Description("How long to keep downloaded sources (e.g., 24h, 168h)").
				Value(&values.CacheTTL).
				Placeholder("168h").
				Validate(ValidateDuration),

			huh.NewInput().
				Key("directory").
				Title("Cache Directory").
				Description("Directory for cache storage").
				Value(&values.CacheDirectory).
				Placeholder("~/.pdfremix/cache"),
		),
	).WithTheme(GetTheme())
}

func CreateLoggingForm(values *ConfigValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("level").
				Title("Log Level").
				Description("Minimum log level to display").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&values.LogLevel),

			huh.NewSelect[string]().
				Key("format").
				Title("Log Format").
				Description("Output format for logs").
				Options(
					huh.NewOption("Pretty (human-readable)", "pretty"),
					huh.NewOption("JSON (structured)", "json"),
				).
				Value(&values.LogFormat),
		),
	).WithTheme(GetTheme())
}

func GetFormForCategory(category string, values *ConfigValues) *huh.Form {
	switch category {
	case "remix":
		return CreateRemixForm(values)
	case "output":
		return CreateOutputForm(values)
	case "fetch":
		return CreateFetchForm(values)
	case "cache":
		return CreateCacheForm(values)
	case "logging":
		return CreateLoggingForm(values)
	default:
		return nil
	}
}
