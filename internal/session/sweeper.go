package session

import (
	"fmt"
	"sync"
	"time"
)

// sweeper runs check on a fixed interval until check returns true or Stop
// is called. Only one loop runs at a time.
type sweeper struct {
	interval  time.Duration
	check     func() bool
	isRunning bool
	stopChan  chan struct{}
	doneChan  chan struct{}
	mutex     sync.Mutex
}

func newSweeper(interval time.Duration, check func() bool) *sweeper {
	return &sweeper{
		interval: interval,
		check:    check,
	}
}

// Start launches the loop.
func (s *sweeper) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("session sweeper is already running")
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	go s.loop(s.stopChan, s.doneChan)

	return nil
}

// Stop ends the loop and waits for it to exit, so no check runs after Stop
// returns. Must not be called from inside check.
func (s *sweeper) Stop() {
	s.mutex.Lock()
	if !s.isRunning {
		s.mutex.Unlock()
		return
	}
	close(s.stopChan)
	done := s.doneChan
	s.isRunning = false
	s.mutex.Unlock()

	<-done
}

// IsRunning returns whether the loop is active.
func (s *sweeper) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.isRunning
}

func (s *sweeper) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Stop wins over a tick that raced it.
			select {
			case <-stop:
				return
			default:
			}

			if s.check() {
				s.finished(stop)
				return
			}

		case <-stop:
			return
		}
	}
}

// finished marks a loop that ended on its own as no longer running.
func (s *sweeper) finished(stop chan struct{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stopChan == stop {
		s.isRunning = false
	}
}
