package ibm2

import (
	"time"

	"go.uber.org/zap"
)

// progressEvery is how many items pass between Progress calls.
const progressEvery = 1000

// Stage identifies which loop a progress report comes from.
type Stage string

const (
	StageInit Stage = "init"
	StagePass Stage = "pass"
)

// Observer receives progress reports from initialization and training.
// Implementations must not modify the model.
type Observer interface {
	// Progress reports the completed fraction (0..1) of a stage.
	// pass is 0 during initialization.
	Progress(stage Stage, pass int, frac float64)
	// InitDone is called once a model has been initialized.
	InitDone(elapsed time.Duration)
	// PassDone is called after every completed EM pass.
	PassDone(st PassStats)
}

// NopObserver discards all reports.
type NopObserver struct{}

func (NopObserver) Progress(Stage, int, float64) {}
func (NopObserver) InitDone(time.Duration)       {}
func (NopObserver) PassDone(PassStats)           {}

func orNop(obs Observer) Observer {
	if obs == nil {
		return NopObserver{}
	}
	return obs
}

// LogObserver returns an Observer that writes reports to logger.
// Progress goes to Debug, stage completions to Info.
func LogObserver(logger *zap.Logger) Observer {
	return &logObserver{log: logger}
}

type logObserver struct {
	log *zap.Logger
}

func (o *logObserver) Progress(stage Stage, pass int, frac float64) {
	o.log.Debug("progress",
		zap.String("stage", string(stage)),
		zap.Int("pass", pass),
		zap.Float64("percent", 100*frac))
}

func (o *logObserver) InitDone(elapsed time.Duration) {
	o.log.Info("model initialized", zap.Duration("elapsed", elapsed))
}

func (o *logObserver) PassDone(st PassStats) {
	o.log.Info("em pass done",
		zap.Int("pass", st.Pass),
		zap.Int("pairs", st.Pairs),
		zap.Duration("elapsed", st.Duration),
		zap.Float64("log_likelihood", st.LogLikelihood))
}
