package global

import (
	"sync"

	"pipdock/pkg/config"
	"pipdock/pkg/logger"
	"pipdock/pkg/notify"
	"pipdock/pkg/sound"
)

var (
	cfg           *config.Config
	log           *logger.Logger
	notifier      *notify.NotifyService
	soundNotifier *sound.SoundNotifier
	initOnce      sync.Once
	mu            sync.RWMutex
)

func InitGlobals(config *config.Config, logger *logger.Logger) {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		cfg = config
		log = logger
		notifier = notify.NewNotifyService(config.GetNotifyCommand(), logger)
		initSound()
	})
}

// initSound opens the speaker the first time sound is enabled. Callers hold mu.
func initSound() {
	if soundNotifier != nil || !cfg.GetSound() {
		return
	}
	sn, err := sound.NewSoundNotifier()
	if err != nil {
		log.Error("Failed to initialize sound notifier", err)
		return
	}
	soundNotifier = sn
}

// SetConfig swaps in a reloaded configuration.
func SetConfig(config *config.Config) {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		return
	}
	cfg = config
	notifier = notify.NewNotifyService(config.GetNotifyCommand(), log)
	initSound()
}

// GetSoundNotifier returns nil when sound is disabled or unavailable.
func GetSoundNotifier() *sound.SoundNotifier {
	mu.RLock()
	defer mu.RUnlock()
	if cfg != nil && !cfg.GetSound() {
		return nil
	}
	return soundNotifier
}

// GetNotifier returns the global notifier instance
func GetNotifier() *notify.NotifyService {
	mu.RLock()
	defer mu.RUnlock()
	return notifier
}
