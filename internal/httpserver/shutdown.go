package httpserver

import "time"

var (
	// ShutdownTimeout controls how long to wait for in-flight requests on shutdown.
	ShutdownTimeout = 15 * time.Second
	// UploadTimeout bounds reading a request body and writing its response.
	UploadTimeout = 10 * time.Minute
)
