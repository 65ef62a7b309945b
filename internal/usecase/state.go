package usecase

import (
	"sync"

	"TradeGate/internal/domain/models"
)

// RunStatus is the operator-controlled run state.
type RunStatus string

const (
	StatusRunning RunStatus = "RUNNING"
	StatusStopped RunStatus = "STOPPED"
)

// Account is the caller-reported account snapshot.
type Account struct {
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	MarginFree float64 `json:"margin_free"`
	OpenTrades int     `json:"open_trades"`
}

// BotState owns the mutable service state: run status, last decision and the
// most recent account numbers. All access goes through its methods.
type BotState struct {
	mu             sync.RWMutex
	status         RunStatus
	lastAction     models.Action
	lastConfidence float64
	account        Account
}

func NewBotState() *BotState {
	return &BotState{status: StatusStopped, lastAction: models.ActionHold}
}

func (s *BotState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRunning
}

func (s *BotState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusStopped
}

func (s *BotState) Status() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *BotState) SetLastDecision(action models.Action, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = action
	s.lastConfidence = confidence
}

func (s *BotState) LastDecision() (models.Action, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAction, s.lastConfidence
}

func (s *BotState) UpdateAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = a
}

func (s *BotState) AccountView() Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}
