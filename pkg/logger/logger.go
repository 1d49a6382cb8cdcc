package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr на уровне info, поэтому пакеты и тесты
// могут логировать без явной инициализации.
var Log = logrus.New()

// Init настраивает глобальный логгер из окружения.
// Вызывается один раз при старте процесса (cmd/server) и из TestMain.
func Init() {
	InitWithOutput(os.Stdout)
}

// InitWithOutput делает то же, что и Init, но пишет в заданный writer.
func InitWithOutput(out io.Writer) {
	// LOG_LEVEL: debug, info, warn... По умолчанию info.
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// LOG_FORMAT: "json" для сбора логов, всё остальное - текст.
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Log.SetOutput(out)
}

// Component возвращает запись с полем "component", как принято во всех системах.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
