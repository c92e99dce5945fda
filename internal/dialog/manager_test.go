package dialog

import (
	"sync"
	"testing"
	"time"
)

func TestManagerCreatesSessionOnFirstGet(t *testing.T) {
	m := NewManager()

	st := m.Get("42")
	if st.SessionID != "42" || st.Stage != StageCollectingService {
		t.Fatalf("new session = %+v", st)
	}

	st.Service = "Basic Haircut"
	if again := m.Get("42"); again.Service != "Basic Haircut" {
		t.Fatal("Get must return the same session state")
	}
}

func TestManagerSnapshotIsACopy(t *testing.T) {
	m := NewManager()
	if snap := m.Snapshot("42"); snap != nil {
		t.Fatalf("snapshot of a missing session = %+v, want nil", snap)
	}

	m.Get("42")
	snap := m.Snapshot("42")
	snap.Service = "Skin Fade"

	if m.Get("42").Service != "" {
		t.Fatal("mutating a snapshot must not affect the stored state")
	}
}

func TestManagerApplyPartialUpdate(t *testing.T) {
	m := NewManager()
	service := "Basic Haircut"
	date := "2025-10-18"

	st := m.Apply("42", StateUpdate{Service: &service, Date: &date})
	if st.Service != service || st.Date != date {
		t.Fatalf("after apply: %+v", st)
	}

	name := "Анна"
	st = m.Apply("42", StateUpdate{Name: &name})
	if st.Service != service || st.ClientName != name {
		t.Fatalf("apply must keep untouched slots: %+v", st)
	}
}

func TestManagerTurnSerializesSameSession(t *testing.T) {
	// Читаем-изменяем-записываем поле состояния из многих горутин:
	// без сериализации ходов часть обновлений теряется (и -race ругается)
	m := NewManager()
	const turns = 50

	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func() {
			defer wg.Done()
			m.Turn("42", func(st *ConversationState) {
				st.ClientName += "x"
			})
		}()
	}
	wg.Wait()

	if got := len(m.Get("42").ClientName); got != turns {
		t.Fatalf("lost updates: %d of %d turns applied", got, turns)
	}
}

func TestManagerApplyWaitsForTurn(t *testing.T) {
	m := NewManager()
	entered := make(chan struct{})
	release := make(chan struct{})

	go m.Turn("42", func(st *ConversationState) {
		close(entered)
		<-release
		st.Service = "Basic Haircut"
	})

	<-entered
	date := "2025-10-18"
	done := make(chan *ConversationState)
	go func() {
		done <- m.Apply("42", StateUpdate{Date: &date})
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Apply finished while a turn of the same session was in flight")
	default:
	}

	close(release)
	st := <-done
	if st.Service != "Basic Haircut" || st.Date != date {
		t.Fatalf("after turn and apply: %+v", st)
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager()
	m.Get("42")
	m.Clear("42")

	if snap := m.Snapshot("42"); snap != nil {
		t.Fatalf("cleared session still present: %+v", snap)
	}
}
