package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL combines a base server URL with a database name.
// When databaseName is empty the base URL is returned untouched. Existing
// query parameters are preserved and sslmode=disable is added if no sslmode
// is present.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")

	databaseURL := baseURL + "/" + databaseName
	if base, query, found := strings.Cut(baseURL, "?"); found {
		databaseURL = fmt.Sprintf("%s/%s?%s", strings.TrimRight(base, "/"), databaseName, query)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL += separator + "sslmode=disable"
	}

	return databaseURL
}
