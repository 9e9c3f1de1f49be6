package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "vibescan"

	// ConfigFileName is the file written by `vibescan init`
	ConfigFileName = "vibescan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "VIBESCAN"

	// SARIFInformationURI is reported as the tool homepage in SARIF logs
	SARIFInformationURI = "https://github.com/ludo-technologies/vibescan"
)

// Exit codes used by the CLI
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitError    = 2
)
