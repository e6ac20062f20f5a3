package media

import "VibeWake/logger"

// LogPlayer is a headless Player that only logs commands. Nothing ever ends.
type LogPlayer struct {
	state deviceState
	ended chan string
}

var _ Player = (*LogPlayer)(nil)

func NewLogPlayer() *LogPlayer {
	return &LogPlayer{ended: make(chan string)}
}

func (p *LogPlayer) do(a Action, url string, loop bool) error {
	cmd := p.state.apply(a, url, loop)
	logger.Info("Player command",
		logger.String("action", string(cmd.Action)),
		logger.String("url", cmd.URL),
		logger.Bool("loop", cmd.Loop))
	return nil
}

func (p *LogPlayer) Load(url string) error { return p.do(ActionLoad, url, false) }
func (p *LogPlayer) Play() error { return p.do(ActionPlay, "", false) }
func (p *LogPlayer) Pause() error { return p.do(ActionPause, "", false) }
func (p *LogPlayer) Stop() error { return p.do(ActionStop, "", false) }
func (p *LogPlayer) SetLooping(loop bool) error { return p.do(ActionLoop, "", loop) }
func (p *LogPlayer) Ended() <-chan string { return p.ended }
