package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.Mutex
	log *zap.Logger

	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init настраивает глобальный логгер. Без вызова Init первый лог
// поднимет production-конфиг сам.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	mu.Lock()
	log = l
	mu.Unlock()
	return nil
}

func get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log, _ = zap.NewProduction(zap.AddCallerSkip(1))
		if log == nil {
			log = zap.NewNop()
		}
	}
	return log
}

func Info(format string, args ...interface{}) {
	get().With(
		zap.String("service", serviceName),
	).Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().With(
		zap.String("service", serviceName),
	).Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().With(
		zap.String("service", serviceName),
	).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().With(
		zap.String("service", serviceName),
	).Fatal(fmt.Sprintf(format, args...))
}
