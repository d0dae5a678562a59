package jobs

import (
	"context"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/services"
	"github.com/sirupsen/logrus"
)

// QuizExpiry periodically forces overdue guessing quizzes to completed.
// The transition is idempotent, so racing a client's own timeout check is
// harmless.
type QuizExpiry struct {
	ChallengeService *services.ChallengeService
	Interval         time.Duration

	done chan bool
}

// NewQuizExpiry creates a new instance of QuizExpiry.
func NewQuizExpiry(challengeService *services.ChallengeService, interval time.Duration) *QuizExpiry {
	return &QuizExpiry{
		ChallengeService: challengeService,
		Interval:         interval,
		done:             make(chan bool),
	}
}

// Start launches the sweep loop.
func (j *QuizExpiry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.RunSweep(ctx)
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (j *QuizExpiry) Stop() {
	close(j.done)
}

// RunSweep expires every overdue active quiz once.
func (j *QuizExpiry) RunSweep(ctx context.Context) {
	expired, err := j.ChallengeService.ExpireDueQuizzes(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Quiz expiry sweep failed")
		return
	}
	if expired > 0 {
		logrus.WithField("expired", expired).Info("Quiz expiry sweep completed")
	}
}
