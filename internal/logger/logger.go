package logger

import (
	"github.com/sirupsen/logrus"
)

// Log — общий логгер процесса. До вызова Init пишет в stderr с уровнем info,
// поэтому пакеты могут логировать и в тестах.
var Log = logrus.New()

// Init настраивает структурированный логгер. Экземпляр Log не пересоздаётся,
// чтобы ранее сохранённые ссылки на него оставались рабочими.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

