package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New создает настроенный JSON-логгер приложения
func New(level string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(parsed)

	return log
}
