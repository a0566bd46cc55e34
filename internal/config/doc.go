// Package config provides configuration management for the survey service.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use: the
// multi-survey application on port 8080 with in-memory sessions.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
