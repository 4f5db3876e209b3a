package worker

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Identity generates an ephemeral worker identity token. The random
// suffix keeps a restarted process distinct from the stale claims its
// previous incarnation left behind; identity is a value handed to the
// claim manager, never a global.
func Identity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}
