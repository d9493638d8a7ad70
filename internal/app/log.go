package app

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/config"
)

// NewLogger настраивает logrus по секции log конфигурации.
func NewLogger(cfg config.Log, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
