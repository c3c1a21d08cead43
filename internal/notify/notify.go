package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/saadjs/checkin-cli/internal/model"
)

const appName = "checkin"

type Notifier interface {
	Notify(title, message string) error
}

// Desktop shows native desktop notifications.
type Desktop struct{}

func (Desktop) Notify(title, message string) error {
	beeep.AppName = appName
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("send desktop notification: %w", err)
	}
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// CrossedFloor reports whether a day total moved from below goal to at or
// above it. Zero goals never trigger.
func CrossedFloor(before, after, goal float64) bool {
	return goal > 0 && before < goal && after >= goal
}

// GoalReached notifies when logging moved kind's day total across its daily
// floor.
func GoalReached(n Notifier, kind model.Kind, before, after, goal float64) (bool, error) {
	if n == nil || !CrossedFloor(before, after, goal) {
		return false, nil
	}
	title := fmt.Sprintf("Daily %s goal reached", kind)
	message := fmt.Sprintf("%s today: %.2f / %.2f", kind, after, goal)
	if err := n.Notify(title, message); err != nil {
		return false, err
	}
	return true, nil
}
