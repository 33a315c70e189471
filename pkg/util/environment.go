package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentBool reads a boolean variable, accepting YES/NO alongside the strconv forms.
// An unset or empty variable returns fallback.
func EnvironmentBool(environment map[string]string, name string, fallback bool) (bool, error) {
	value := strings.TrimSpace(environment[name])

	switch strings.ToUpper(value) {
	case "":
		return fallback, nil
	case "YES":
		return true, nil
	case "NO":
		return false, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("environment variable %s: %w", name, err)
	}

	return parsed, nil
}
