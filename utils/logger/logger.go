package logger

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

type logLine struct {
	logFn func(...any)
	obj   string
	msg   string
}

const (
	logSize = 1000
	objSize = 20
)

var (
	logCh   = make(chan logLine, logSize)
	started atomic.Bool
)

func objToString(obj any) (objStr string) {
	if obj == nil {
		return "NIL"
	}
	if rv := reflect.ValueOf(obj); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return reflect.TypeOf(obj).Elem().Name()
	}
	switch o := obj.(type) {
	case stringer:
		objStr = o.String()
	case string:
		objStr = o
	default:
		objStr = reflect.TypeOf(obj).Name()
	}
	if len(objStr) > objSize {
		objStr = objStr[:objSize]
	}
	return objStr
}

func format(l logLine) string {
	return fmt.Sprintf("|%20s|%-100s", l.obj, l.msg)
}

// Init configures logrus and starts the background writer.
// Lines logged before Init are written synchronously by the caller.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})

	if !started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		for l := range logCh {
			l.logFn(format(l))
		}
	}()
}

func emit(lvl logrus.Level, logFn func(...any), object any, msg string) {
	if logrus.GetLevel() < lvl {
		return
	}
	l := logLine{logFn: logFn, obj: objToString(object), msg: msg}
	if !started.Load() {
		l.logFn(format(l))
		return
	}
	select {
	case logCh <- l:
	default:
		l.logFn(format(l))
	}
}

func Trace(object any, message string) {
	emit(logrus.TraceLevel, logrus.Trace, object, message)
}

func Tracef(object any, message string, args ...any) {
	emit(logrus.TraceLevel, logrus.Trace, object, fmt.Sprintf(message, args...))
}

func Debug(object any, message string) {
	emit(logrus.DebugLevel, logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	emit(logrus.DebugLevel, logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	emit(logrus.InfoLevel, logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	emit(logrus.InfoLevel, logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	emit(logrus.WarnLevel, logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	emit(logrus.WarnLevel, logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	emit(logrus.ErrorLevel, logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	emit(logrus.ErrorLevel, logrus.Error, object, fmt.Sprintf(message, args...))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(format(logLine{obj: objToString(object), msg: fmt.Sprintf(message, args...)}))
}

// ParseLevel maps a configuration string to a logrus level.
func ParseLevel(s string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
