package conversation

import "time"

// Timer es una tarea programada cancelable.
type Timer interface {
	Stop() bool
}

// Scheduler programa la respuesta diferida del bot.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

// NewRealScheduler usa time.AfterFunc.
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
