package ports

// Logger defines the interface for logging. All output goes to stderr; stdout
// belongs to the language-server transport.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(err error)
}
