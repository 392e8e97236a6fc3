// Package config loads server configuration from the environment, dotenv
// files and JSON or YAML documents.
//
// The core only ever sees a Getter: an opaque key lookup with a default. A
// Loader layers runtime values over environment variables, and ServerConfig
// decodes the handful of MCP_* variables the backends read at startup.
package config
