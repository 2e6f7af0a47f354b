package credentials

import (
	"os"
	"strings"
)

// normalizeProviderName converts a provider name to the format used in
// environment variables. Example: "my-tasks" becomes "MY_TASKS".
func normalizeProviderName(providerName string) string {
	normalized := strings.ToUpper(providerName)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return normalized
}

// getEnvVarName returns the environment variable name for a provider field
func getEnvVarName(providerName, field string) string {
	return "TASKBRIDGE_" + normalizeProviderName(providerName) + "_" + strings.ToUpper(field)
}

// GetToken retrieves the API token from environment variables
// Looks for: TASKBRIDGE_{PROVIDER_NAME}_TOKEN
func GetToken(providerName string) string {
	if providerName == "" {
		return ""
	}
	return os.Getenv(getEnvVarName(providerName, "TOKEN"))
}

// HasToken checks whether a token exists in environment variables
func HasToken(providerName string) bool {
	return GetToken(providerName) != ""
}
