package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/lifecycle"
)

type recorder struct {
	name     string
	log      *[]string
	startErr error
	stopErr  error
}

func (r *recorder) Start(context.Context) error {
	*r.log = append(*r.log, "start:"+r.name)
	return r.startErr
}

func (r *recorder) Stop(context.Context) error {
	*r.log = append(*r.log, "stop:"+r.name)
	return r.stopErr
}

func TestStartAll_Order(t *testing.T) {
	t.Parallel()

	var log []string
	a := &recorder{name: "a", log: &log}
	b := &recorder{name: "b", log: &log}

	require.NoError(t, lifecycle.StartAll(context.Background(), a, b))
	require.NoError(t, lifecycle.StopAll(context.Background(), a, b))
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, log)
}

func TestStartAll_RollsBack(t *testing.T) {
	t.Parallel()

	var log []string
	boom := errors.New("boom")
	a := &recorder{name: "a", log: &log}
	b := &recorder{name: "b", log: &log}
	c := &recorder{name: "c", log: &log, startErr: boom}
	d := &recorder{name: "d", log: &log}

	err := lifecycle.StartAll(context.Background(), a, b, c, d)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:b", "stop:a"}, log)
}

func TestStopAll_JoinsErrors(t *testing.T) {
	t.Parallel()

	var log []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	a := &recorder{name: "a", log: &log, stopErr: errA}
	b := &recorder{name: "b", log: &log, stopErr: errB}

	err := lifecycle.StopAll(context.Background(), a, b)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, []string{"stop:b", "stop:a"}, log)
}

func TestStopAll_Empty(t *testing.T) {
	t.Parallel()
	assert.NoError(t, lifecycle.StopAll(context.Background()))
	assert.NoError(t, lifecycle.StartAll(context.Background()))
}
