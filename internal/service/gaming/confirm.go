package gaming

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zodiac_backend/internal/model"
)

const (
	// HighBetThreshold Ставки выше требуют подтверждения игрока
	HighBetThreshold = 500
	// confirmationTTL Неразрешённые подтверждения удаляются
	confirmationTTL = 10 * time.Minute
)

// RequestConfirmation opens the first phase of the high bet check. Bets at or
// under the threshold come back already approved and not required.
func (m *Manager) RequestConfirmation(amount int) model.HighBetConfirmation {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	now := m.clock.Now()

	if amount <= HighBetThreshold {
		return model.HighBetConfirmation{
			Amount:    amount,
			Required:  false,
			Status:    model.ConfirmationApproved,
			CreatedAt: now,
		}
	}

	m.pruneConfirmationsLocked(now)
	c := &model.HighBetConfirmation{
		ID:        uuid.NewString(),
		Amount:    amount,
		Required:  true,
		Status:    model.ConfirmationPending,
		CreatedAt: now,
	}
	m.confirmations[c.ID] = c
	return *c
}

// ResolveConfirmation records the player's answer.
func (m *Manager) ResolveConfirmation(id string, approved bool) (model.HighBetConfirmation, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	c, ok := m.confirmations[id]
	if !ok {
		return model.HighBetConfirmation{}, ErrConfirmationNotFound
	}
	if c.Status != model.ConfirmationPending {
		return *c, ErrConfirmationSettled
	}

	c.Status = model.ConfirmationRejected
	if approved {
		c.Status = model.ConfirmationApproved
	}
	if w, ok := m.waiters[id]; ok {
		w <- approved
		delete(m.waiters, id)
	}
	return *c, nil
}

// ConsumeConfirmation spends an approved confirmation on a bet of amount.
// Each confirmation covers one spin.
func (m *Manager) ConsumeConfirmation(id string, amount int) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	c, ok := m.confirmations[id]
	if !ok {
		return ErrConfirmationNotFound
	}
	if c.Status != model.ConfirmationApproved {
		return ErrConfirmationNotApproved
	}
	if amount > c.Amount {
		return ErrConfirmationAmount
	}
	c.Status = model.ConfirmationConsumed
	delete(m.confirmations, id)
	return nil
}

// ConfirmHighBet asks the player to confirm a bet and waits for the answer.
// prompt receives the pending confirmation so the caller can show a dialog;
// it is not called for bets that need no confirmation.
func (m *Manager) ConfirmHighBet(ctx context.Context, amount int, prompt func(model.HighBetConfirmation)) (bool, error) {
	c := m.RequestConfirmation(amount)
	if !c.Required {
		return true, nil
	}

	answer := make(chan bool, 1)
	m.mtx.Lock()
	m.waiters[c.ID] = answer
	m.mtx.Unlock()

	if prompt != nil {
		prompt(c)
	}

	select {
	case approved, ok := <-answer:
		if !ok {
			return false, ErrConfirmationExpired
		}
		// Подтверждение отработало здесь, ставкой его уже не потратить
		m.mtx.Lock()
		delete(m.confirmations, c.ID)
		m.mtx.Unlock()
		return approved, nil
	case <-ctx.Done():
		m.mtx.Lock()
		delete(m.waiters, c.ID)
		if pending, ok := m.confirmations[c.ID]; ok && pending.Status == model.ConfirmationPending {
			pending.Status = model.ConfirmationRejected
		}
		m.mtx.Unlock()
		return false, ctx.Err()
	}
}

func (m *Manager) pruneConfirmationsLocked(now time.Time) {
	for id, c := range m.confirmations {
		if now.Sub(c.CreatedAt) > confirmationTTL {
			delete(m.confirmations, id)
			if w, ok := m.waiters[id]; ok {
				close(w)
				delete(m.waiters, id)
			}
		}
	}
}
