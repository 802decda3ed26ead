package domain

import "errors"

type WatcherState string

const (
	WatcherIdle         WatcherState = "idle"
	WatcherStarting     WatcherState = "starting"
	WatcherWaitingLogin WatcherState = "waiting-login"
	WatcherRunning      WatcherState = "running"
	WatcherStopping     WatcherState = "stopping"
)

var ErrInvalidTransition = errors.New("invalid watcher state transition")

func CanTransition(from, to WatcherState) bool {
	if from == to {
		return true
	}
	switch from {
	case WatcherIdle:
		return to == WatcherStarting
	case WatcherStarting:
		return to == WatcherWaitingLogin || to == WatcherRunning || to == WatcherStopping
	case WatcherWaitingLogin:
		return to == WatcherRunning || to == WatcherStopping
	case WatcherRunning:
		return to == WatcherStopping
	case WatcherStopping:
		return to == WatcherIdle
	default:
		return false
	}
}
