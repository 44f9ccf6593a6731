package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the process environment as a map keyed by variable name
func GetEnvironmentVariables() map[string]string {
	environment := os.Environ()
	environmentVariables := make(map[string]string, len(environment))

	for _, variable := range environment {
		if name, value, found := strings.Cut(variable, "="); found {
			environmentVariables[name] = value
		}
	}

	return environmentVariables
}
