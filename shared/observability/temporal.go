package observability

import (
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

// TemporalLogger routes Temporal SDK logs through zerolog
type TemporalLogger struct {
	logger zerolog.Logger
}

var (
	_ log.Logger     = TemporalLogger{}
	_ log.WithLogger = TemporalLogger{}
)

func NewTemporalLogger(logger zerolog.Logger) TemporalLogger {
	return TemporalLogger{logger: logger.With().Str("component", "temporal").Logger()}
}

// TemporalClientOptions are the options every binary dials Temporal with
func TemporalClientOptions(hostPort string, logger zerolog.Logger) client.Options {
	return client.Options{
		HostPort: hostPort,
		Logger:   NewTemporalLogger(logger),
	}
}

func (l TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.logger.Debug().Fields(keyvals).Msg(msg)
}

func (l TemporalLogger) Info(msg string, keyvals ...interface{}) {
	l.logger.Info().Fields(keyvals).Msg(msg)
}

func (l TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.logger.Warn().Fields(keyvals).Msg(msg)
}

func (l TemporalLogger) Error(msg string, keyvals ...interface{}) {
	l.logger.Error().Fields(keyvals).Msg(msg)
}

func (l TemporalLogger) With(keyvals ...interface{}) log.Logger {
	return TemporalLogger{logger: l.logger.With().Fields(keyvals).Logger()}
}
