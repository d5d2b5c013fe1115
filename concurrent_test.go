package lifescope_test

import (
	"sync"
	"testing"
	"time"

	"github.com/centraunit/lifescope"
	"github.com/centraunit/lifescope/mock"
	"github.com/stretchr/testify/suite"
)

type ConcurrentTestSuite struct {
	suite.Suite
	container *lifescope.Container
}

func (s *ConcurrentTestSuite) SetupTest() {
	s.container = lifescope.New()
}

func (s *ConcurrentTestSuite) TestSingletonRace() {
	counter := &mock.Counter{}
	err := lifescope.Register[mock.Logger](s.container, func() (mock.Logger, error) {
		counter.Inc()
		time.Sleep(10 * time.Millisecond)
		return &mock.MemoryLogger{}, nil
	}, lifescope.LifetimeSingleton)
	s.NoError(err)

	const resolvers = 10
	var wg sync.WaitGroup
	results := make([]mock.Logger, resolvers)
	errs := make([]error, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = lifescope.Resolve[mock.Logger](s.container)
		}(i)
	}
	wg.Wait()

	s.EqualValues(1, counter.Count(), "exactly one construction despite the race")
	for i := 0; i < resolvers; i++ {
		s.NoError(errs[i])
		s.Same(results[0], results[i], "every racer observes the winner's instance")
	}
}

func (s *ConcurrentTestSuite) TestScopedRaceWithinOneScope() {
	counter := &mock.Counter{}
	err := lifescope.Register[mock.Greeter](s.container, func() (mock.Greeter, error) {
		counter.Inc()
		time.Sleep(5 * time.Millisecond)
		return &mock.ScopedGreeter{Logger: &mock.MemoryLogger{}}, nil
	}, lifescope.LifetimeScoped)
	s.NoError(err)

	scope := s.container.CreateScope()
	const resolvers = 8
	var wg sync.WaitGroup
	results := make([]mock.Greeter, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instance, err := lifescope.Resolve[mock.Greeter](scope)
			s.NoError(err)
			results[i] = instance
		}(i)
	}
	wg.Wait()

	s.EqualValues(1, counter.Count())
	for i := 1; i < resolvers; i++ {
		s.Same(results[0], results[i])
	}
}

func (s *ConcurrentTestSuite) TestUnrelatedKeysDoNotSerialize() {
	slow := make(chan struct{})
	err := lifescope.RegisterNamed[mock.Logger](s.container, "slow", func() (mock.Logger, error) {
		<-slow
		return &mock.MemoryLogger{}, nil
	}, lifescope.LifetimeSingleton)
	s.NoError(err)
	err = lifescope.RegisterNamed[mock.Logger](s.container, "fast", func() (mock.Logger, error) {
		return &mock.MemoryLogger{}, nil
	}, lifescope.LifetimeSingleton)
	s.NoError(err)

	started := make(chan struct{})
	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		close(started)
		_, err := lifescope.ResolveNamed[mock.Logger](s.container, "slow")
		s.NoError(err)
	}()
	<-started

	// the fast key resolves while the slow key's closure is still running
	done := make(chan struct{})
	go func() {
		_, err := lifescope.ResolveNamed[mock.Logger](s.container, "fast")
		s.NoError(err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("fast resolution blocked behind unrelated slow construction")
	}
	close(slow)
	<-slowDone
}

func (s *ConcurrentTestSuite) TestConcurrentTransientDisposalTracking() {
	err := lifescope.Register[*mock.TrackedResource](s.container, func() (*mock.TrackedResource, error) {
		return &mock.TrackedResource{ID: "res"}, nil
	}, lifescope.LifetimeTransient)
	s.NoError(err)

	scope := s.container.CreateScope()
	const resolvers = 16
	var wg sync.WaitGroup
	resources := make([]*mock.TrackedResource, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instance, err := lifescope.Resolve[*mock.TrackedResource](scope)
			s.NoError(err)
			resources[i] = instance
		}(i)
	}
	wg.Wait()

	s.NoError(scope.Dispose())
	for _, r := range resources {
		s.Equal(1, r.DisposeCount())
	}
}

func TestConcurrentSuite(t *testing.T) {
	suite.Run(t, new(ConcurrentTestSuite))
}
