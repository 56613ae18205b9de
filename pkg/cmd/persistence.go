// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"strings"

	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/persistence/file"
	"github.com/talentops/hireflow/pkg/persistence/memory"
	redisstore "github.com/talentops/hireflow/pkg/persistence/redis"
)

// NewPersistence creates a store from a database URL. Supported schemes:
// file://<dir>, redis://<host:port>/<db>, and memory:// for ephemeral runs.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	scheme, _, _ := strings.Cut(databaseURL, "://")

	switch scheme {
	case "memory":
		return memory.NewPersistence(), nil
	case "redis", "rediss":
		return redisstore.NewPersistence(databaseURL)
	case "file":
		return file.NewPersistence(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported persistence provider: %s", scheme)
	}
}
