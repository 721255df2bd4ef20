// Package utils exposes the configuration, logging, and output helpers shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files, environment
// variables (including legacy aliases) through Viper; LoggerFactory builds zap
// loggers in structured or console form; FlushingWriter keeps report output
// visible as it is written.
package utils
