package providers

import "time"

// shutdownTimeout bounds how long graceful shutdown may take per service.
const shutdownTimeout = 30 * time.Second
