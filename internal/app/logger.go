package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает логгер CRM. В production пишем JSON, в разработке
// цветной консольный вывод. Непустой logPath дублирует логи в файл,
// чтобы история импортов и резервных копий сохранялась между запусками.
func NewLogger(env, logPath string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config.OutputPaths = []string{"stdout"}
	if logPath != "" {
		config.OutputPaths = append(config.OutputPaths, logPath)
	}

	logger, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return logger
}
