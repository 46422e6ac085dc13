// Package config provides configuration management for the debate hub.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use. The
// provider catalog is built in and can be replaced with a YAML file named by
// PROVIDERS_FILE:
//
//	providers:
//	  - name: Claude
//	    kind: anthropic
//	    model: claude-3-opus-20240229
//	    api_key_env: ANTHROPIC_API_KEY
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
