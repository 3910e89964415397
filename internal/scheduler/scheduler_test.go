package scheduler

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewScheduler(nil, nil, nil, log)
}

func TestStartWithoutJobs(t *testing.T) {
	s := newTestScheduler()
	err := s.Start()
	assert.ErrorContains(t, err, "no jobs scheduled")
	assert.False(t, s.IsRunning())
}

func TestScheduleRefitInvalidExpression(t *testing.T) {
	s := newTestScheduler()
	err := s.ScheduleRefit("not a cron expression")
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleRefit("0 3 * * *"))
	require.NoError(t, s.ScheduleIngestion(15))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Len(t, s.Entries(), 2)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestCannotScheduleWhileRunning(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleIngestion(5))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.ScheduleRefit("0 3 * * *"))
	assert.Error(t, s.ScheduleIngestion(5))
}
