package worker

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Predictia/chronoplan/pkg/tasks"
)

func logrusTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid",
			config: Config{Concurrency: 5},
		},
		{
			name:    "zero concurrency",
			config:  Config{},
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative concurrency",
			config:  Config{Concurrency: -1},
			wantErr: ErrInvalidConcurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewService(t *testing.T) {
	log := logrusTestLogger()

	svc, err := NewService(log, &Config{Concurrency: 2}, asynq.RedisClientOpt{Addr: "localhost:6379"}, tasks.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = NewService(log, &Config{}, asynq.RedisClientOpt{Addr: "localhost:6379"}, tasks.NewRegistry())
	assert.ErrorIs(t, err, ErrInvalidConcurrency)
}
