package runner

import "github.com/charmbracelet/log"

// LogDispatcher renders effects as log lines. It is the default sink for
// the CLI, where no audio or rendering backend exists.
type LogDispatcher struct{}

func (LogDispatcher) PlaySound(id int64) {
	log.Info("playing sound", "sound", id)
}

func (LogDispatcher) SpawnParticles(id int64) {
	log.Info("spawning particles", "particles", id)
}
