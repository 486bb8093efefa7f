// Package instance names the running worker process for logs and metrics.
package instance

import (
	"os"

	"github.com/angelmondragon/dentalclinic-backend/pkg/env"
)

const defaultID = "worker-0"

// GetID prefers DENTAL_WORKER_ID, then WORKER_ID, then the host name.
func GetID() string {
	if id := env.FirstNonEmpty("", "DENTAL_WORKER_ID", "WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
