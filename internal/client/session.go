package client

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"validity-service/internal/apierror"
)

// MemorySession хранит состояние клиентской сессии в памяти.
// Реализует apierror.SessionStore и TokenSource.
type MemorySession struct {
	mu           sync.RWMutex
	token        string
	currentTeam  *Team
	selectedTeam string
}

// Team описывает команду, с которой работает клиент
type Team struct {
	ID   string
	Name string
	Role string
}

// NewMemorySession создает пустую сессию
func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

// SignIn сохраняет токен после входа
func (s *MemorySession) SignIn(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token возвращает текущий токен
func (s *MemorySession) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// SignedIn сообщает, есть ли активный токен
func (s *MemorySession) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// SelectTeam запоминает выбранную команду
func (s *MemorySession) SelectTeam(team Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTeam = team.ID
	s.currentTeam = &team
}

// SelectedTeam возвращает ID выбранной команды
func (s *MemorySession) SelectedTeam() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTeam, s.selectedTeam != ""
}

// CurrentTeam возвращает данные текущей команды
func (s *MemorySession) CurrentTeam() (Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentTeam == nil {
		return Team{}, false
	}
	return *s.currentTeam, true
}

// ClearSelectedTeam сбрасывает выбор команды
func (s *MemorySession) ClearSelectedTeam(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTeam = ""
	return nil
}

// ClearCurrentTeam удаляет данные текущей команды
func (s *MemorySession) ClearCurrentTeam(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTeam = nil
	return nil
}

// SignOut удаляет токен
func (s *MemorySession) SignOut(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var (
	_ apierror.SessionStore = (*MemorySession)(nil)
	_ TokenSource           = (*MemorySession)(nil)
)

// LogNavigator запоминает последний маршрут и пишет переходы в лог
type LogNavigator struct {
	mu     sync.Mutex
	route  string
	params map[string]string
	logger *zap.Logger
}

// NewLogNavigator создает навигатор
func NewLogNavigator(logger *zap.Logger) *LogNavigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNavigator{logger: logger.Named("navigator")}
}

// ResetTo заменяет текущий маршрут
func (n *LogNavigator) ResetTo(_ context.Context, route string, params map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.route = route
	n.params = params
	n.logger.Info("navigation reset", zap.String("route", route), zap.Any("params", params))
	return nil
}

// Route возвращает последний маршрут
func (n *LogNavigator) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

var _ apierror.Navigator = (*LogNavigator)(nil)
