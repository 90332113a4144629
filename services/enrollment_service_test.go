package services

import (
	"context"
	"sync"
	"testing"

	"github.com/edemy/lms-server/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIsIdempotent(t *testing.T) {
	store := database.NewMemoryStore()
	enrollments := NewEnrollmentService(store)

	for i := 0; i < 3; i++ {
		require.NoError(t, enrollments.Apply(context.Background(), "user-1", "course-1"))
	}

	assert.Equal(t, 1, store.EnrollmentCount())

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestApplyConcurrentNetsOneEnrollment(t *testing.T) {
	store := database.NewMemoryStore()
	enrollments := NewEnrollmentService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- enrollments.Apply(context.Background(), "user-1", "course-1")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err, "concurrent applications must all succeed")
	}
	assert.Equal(t, 1, store.EnrollmentCount())
}

func TestApplyDistinctPairsAccumulate(t *testing.T) {
	store := database.NewMemoryStore()
	enrollments := NewEnrollmentService(store)

	require.NoError(t, enrollments.Apply(context.Background(), "user-1", "course-1"))
	require.NoError(t, enrollments.Apply(context.Background(), "user-1", "course-2"))
	require.NoError(t, enrollments.Apply(context.Background(), "user-2", "course-1"))

	assert.Equal(t, 3, store.EnrollmentCount())
}
