package service

import (
	"context"

	"agent_shopping/pkg/logger"
)

// SMSSender доставляет код подтверждения. В development код пишется в лог.
type SMSSender interface {
	Send(ctx context.Context, phone, code string) error
}

type logSMSSender struct {
	log logger.Logger
}

func NewLogSMSSender(log logger.Logger) SMSSender {
	return &logSMSSender{log: log}
}

func (s *logSMSSender) Send(ctx context.Context, phone, code string) error {
	s.log.Info("SMS verification code", "phone", phone, "code", code)
	return nil
}
