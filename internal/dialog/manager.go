package dialog

import "sync"

// Manager хранит состояния активных сессий диалога.
// Ключ — идентификатор сессии, который выдаёт внешний слой оркестрации.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*ConversationState
	locks  map[string]*sync.Mutex // сессия -> мьютекс хода
}

func NewManager() *Manager {
	return &Manager{
		states: make(map[string]*ConversationState),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}

// Turn выполняет один ход диалога эксклюзивно для сессии: два хода
// одной сессии никогда не идут параллельно, состояние меняется только
// внутри fn. Ходы разных сессий друг друга не ждут.
func (m *Manager) Turn(sessionID string, fn func(st *ConversationState)) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	fn(m.Get(sessionID))
}

// Get возвращает состояние сессии, создавая новое при первом обращении
func (m *Manager) Get(sessionID string) *ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[sessionID]
	if !ok {
		st = &ConversationState{SessionID: sessionID, Stage: StageCollectingService}
		m.states[sessionID] = st
	}
	return st
}

// Snapshot возвращает копию состояния сессии (nil, если сессии нет)
func (m *Manager) Snapshot(sessionID string) *ConversationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[sessionID]
	if !ok {
		return nil
	}
	copied := *st
	return &copied
}

// Apply применяет частичное обновление слотов и возвращает копию состояния.
// Держит мьютекс хода: обновление не пересекается с Turn той же сессии.
func (m *Manager) Apply(sessionID string, upd StateUpdate) *ConversationState {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[sessionID]
	if !ok {
		st = &ConversationState{SessionID: sessionID, Stage: StageCollectingService}
		m.states[sessionID] = st
	}

	if upd.Service != nil {
		st.Service = *upd.Service
	}
	if upd.Date != nil {
		st.Date = *upd.Date
	}
	if upd.StartTime != nil {
		st.StartTime = *upd.StartTime
	}
	if upd.Name != nil {
		st.ClientName = *upd.Name
	}
	if upd.Phone != nil {
		st.ClientPhone = *upd.Phone
	}
	if upd.Email != nil {
		st.ClientEmail = *upd.Email
	}

	copied := *st
	return &copied
}

// Clear удаляет состояние сессии (завершение или сброс диалога)
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, sessionID)
}
