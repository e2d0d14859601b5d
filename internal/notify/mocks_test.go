package notify

import (
	"context"
	"sync"
	"wxhm/internal/models"
)

// stubConfigs serves a mutable current config.
type stubConfigs struct {
	mu      sync.Mutex
	current *models.ChannelConfig
	byID    map[int64]*models.ChannelConfig
	err     error
}

func (s *stubConfigs) setCurrent(cfg *models.ChannelConfig) {
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
}

func (s *stubConfigs) Save(_ context.Context, cfg *models.ChannelConfig) (*models.ChannelConfig, error) {
	return cfg, nil
}
func (s *stubConfigs) Get(_ context.Context, id int64) (*models.ChannelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.byID[id]; ok {
		return cfg, nil
	}
	return nil, models.ErrNotFound
}
func (s *stubConfigs) List(_ context.Context) ([]models.ChannelConfig, error) { return nil, nil }
func (s *stubConfigs) Delete(_ context.Context, _ int64) error               { return nil }
func (s *stubConfigs) Current(_ context.Context) (*models.ChannelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.current, nil
}

type sentMessage struct {
	configID int64
	msg      *TemplateMessage
}

// stubChannel records sends. A non-nil gate blocks every send until closed.
type stubChannel struct {
	mu    sync.Mutex
	sent  []sentMessage
	err   error
	gate  chan struct{}
	calls chan struct{}
	panic bool
}

func (c *stubChannel) Send(ctx context.Context, cfg *models.ChannelConfig, msg *TemplateMessage) (*SendResult, error) {
	if c.calls != nil {
		c.calls <- struct{}{}
	}
	if c.gate != nil {
		<-c.gate
	}
	if c.panic {
		panic("channel exploded")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{configID: cfg.ID, msg: msg})
	if c.err != nil {
		return nil, c.err
	}
	return &SendResult{MsgID: int64(len(c.sent))}, nil
}

func (c *stubChannel) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}
