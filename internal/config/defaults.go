package config

const (
	defaultConfigPath    = "~/.config/formatrisk/config.toml"
	defaultStateDir      = "~/.local/share/formatrisk"
	defaultLogDir        = "~/.local/share/formatrisk/logs"
	defaultFITSBinary    = "fits.sh"
	defaultLongPathLimit = 260
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// ReportFormats lists the document formats the report writer understands.
var ReportFormats = []string{"csv", "markdown", "html"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		FITS: FITS{
			Binary: defaultFITSBinary,
		},
		Appraisal: Appraisal{
			TrashKeywords: []string{"trash", "trashes"},
		},
		Report: Report{
			Formats: []string{"csv", "html"},
		},
		Manifest: Manifest{
			LongPathLimit: defaultLongPathLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
