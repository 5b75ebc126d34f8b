// Package logging provides structured logging for the topology publisher.
//
// It wraps log/slog with the handler, level and default fields chosen in
// the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Every entry carries service and version attributes. *Logger satisfies
// the small Logger interfaces declared by the publisher and adapter packages.
//
// Never log broker passwords or tokens.
package logging
