package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// outputs is shared by a logger and all of its subloggers, so an appender added to the root (a
// log file opened after startup) reaches every component.
type outputs struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (o *outputs) add(appender Appender) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appenders = append(o.appenders, appender)
}

func (o *outputs) snapshot() []Appender {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.appenders
}

type logger struct {
	name   string
	level  AtomicLevel
	inUTC  bool
	fields []zapcore.Field
	output *outputs
}

func (l *logger) AddAppender(appender Appender) {
	l.output.add(appender)
}

func (l *logger) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *logger) GetLevel() Level {
	return l.level.Get()
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	sub := &logger{
		name:   name,
		level:  NewAtomicLevelAt(l.level.Get()),
		inUTC:  l.inUTC,
		fields: l.fields,
		output: l.output,
	}
	globalRegistry.register(name, sub)
	return sub
}

// WithFields shares the level of l; the returned logger is not registered under its own name.
func (l *logger) WithFields(keysAndValues ...interface{}) Logger {
	fields := make([]zapcore.Field, 0, len(l.fields)+len(keysAndValues)/2)
	fields = append(fields, l.fields...)
	return &logger{
		name:   l.name,
		level:  l.level,
		inUTC:  l.inUTC,
		fields: appendPairs(fields, keysAndValues),
		output: l.output,
	}
}

func (l *logger) Sync() error {
	var err error
	for _, appender := range l.output.snapshot() {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (l *logger) enabled(level Level) bool {
	return level >= l.level.Get()
}

// write hands one entry to every appender. It must be called directly from an exported logging
// method so the caller lookup lands on user code.
func (l *logger) write(level Level, msg string, keysAndValues []interface{}) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     callerOf(3),
	}
	if l.inUTC {
		entry.Time = entry.Time.UTC()
	}
	fields := l.fields
	if len(keysAndValues) > 0 {
		fields = appendPairs(append([]zapcore.Field(nil), l.fields...), keysAndValues)
	}
	for _, appender := range l.output.snapshot() {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// appendPairs turns alternating keys and values into zap fields. A trailing key without a value
// is kept with an error value so the mistake shows up in the output.
func appendPairs(fields []zapcore.Field, keysAndValues []interface{}) []zapcore.Field {
	for i := 0; i < len(keysAndValues); i += 2 {
		var key string
		switch k := keysAndValues[i].(type) {
		case string:
			key = k
		case fmt.Stringer:
			key = k.String()
		default:
			key = fmt.Sprint(k)
		}
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func callerOf(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip)
	caller := zapcore.EntryCaller{PC: pc, File: file, Line: line, Defined: ok}
	if fn := runtime.FuncForPC(pc); ok && fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}

func (l *logger) Debug(args ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (l *logger) Debugf(template string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, msg, keysAndValues)
	}
}

func (l *logger) Info(args ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, fmt.Sprint(args...), nil)
	}
}

func (l *logger) Infof(template string, args ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Infow(msg string, keysAndValues ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, msg, keysAndValues)
	}
}

func (l *logger) Warn(args ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, fmt.Sprint(args...), nil)
	}
}

func (l *logger) Warnf(template string, args ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, msg, keysAndValues)
	}
}

func (l *logger) Error(args ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, fmt.Sprint(args...), nil)
	}
}

func (l *logger) Errorf(template string, args ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Errorw(msg string, keysAndValues ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, msg, keysAndValues)
	}
}
