// Package config provides configuration management for the VQA agent.
//
// Configuration is loaded from environment variables with documented defaults.
// The package supports:
//   - HTTP server settings (HOST, PORT, DEBUG)
//   - Model selection and cache location (IMAGE_MODEL, TEXT_MODEL, MODEL_CACHE_DIR)
//   - Temporary image storage (TEMP_IMAGE_DIR)
//   - Logging verbosity (LOG_LEVEL)
//   - Inference backend address and maintenance intervals
//
// Every key is optional; a value that is present but cannot be coerced to its
// expected type fails the load with a typed *Error instead of silently
// falling back to the default. The resolved record is immutable.
package config
