package logger_adapter

import (
	"errors"

	"listing-service/internal/core/port"
)

var errNoSinks = errors.New("multilogger: no loggers configured")

// fanout рассылает запись по всем приемникам (stdout, fluent-bit)
type fanout []port.LoggerPort

// NewMultiloggerAdapter собирает приемники в один логгер. nil пропускаются;
// если приемник один, он возвращается как есть.
func NewMultiloggerAdapter(loggers ...port.LoggerPort) (port.LoggerPort, error) {
	sinks := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			sinks = append(sinks, l)
		}
	}
	switch len(sinks) {
	case 0:
		return nil, errNoSinks
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}

func (f fanout) Info(msg string, fields port.Fields) {
	for _, l := range f {
		l.Info(msg, fields)
	}
}

func (f fanout) Warn(msg string, fields port.Fields) {
	for _, l := range f {
		l.Warn(msg, fields)
	}
}

func (f fanout) Error(msg string, err error, fields port.Fields) {
	for _, l := range f {
		l.Error(msg, err, fields)
	}
}

func (f fanout) Debug(msg string, fields port.Fields) {
	for _, l := range f {
		l.Debug(msg, fields)
	}
}

// WithFields не трогает исходный набор: у каждого приемника свой дочерний логгер.
func (f fanout) WithFields(fields port.Fields) port.LoggerPort {
	scoped := make(fanout, len(f))
	for i, l := range f {
		scoped[i] = l.WithFields(fields)
	}
	return scoped
}
