// Package tournaments — creation.go реализует пошаговое создание турнира
// как явную машину состояний на оператора:
// name → date → time → entry_fee → map → prize → commit.
// Состояния живут в памяти с TTL; брошенный диалог истекает сам.
package tournaments

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// creationStep — текущий шаг диалога.
type creationStep string

const (
	stepName  creationStep = "name"
	stepDate  creationStep = "date"
	stepTime  creationStep = "time"
	stepFee   creationStep = "entry_fee"
	stepMap   creationStep = "map"
	stepPrize creationStep = "prize"
)

// creationState — накопленные ответы оператора.
type creationState struct {
	Step      creationStep
	Spec      CreateSpec
	ExpiresAt time.Time
}

const creationTTL = 5 * time.Minute

// CreationFlow держит диалоги создания по операторам.
type CreationFlow struct {
	service *Service

	mu     sync.RWMutex
	states map[int64]*creationState
}

// NewCreationFlow создаёт машину пошагового создания.
func NewCreationFlow(service *Service) *CreationFlow {
	return &CreationFlow{
		service: service,
		states:  make(map[int64]*creationState),
	}
}

// Start начинает диалог для оператора. Категория проверяется сразу,
// до первого шага.
func (f *CreationFlow) Start(operatorID int64, category string) (string, error) {
	c, err := ParseCategory(strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.states[operatorID] = &creationState{
		Step:      stepName,
		Spec:      CreateSpec{Category: c},
		ExpiresAt: time.Now().Add(creationTTL),
	}
	f.mu.Unlock()

	return "🎮 Creating " + strings.ToUpper(string(c)) + " tournament...\n\nStep 1/6: Enter tournament name:", nil
}

// Active сообщает, идёт ли у оператора диалог создания.
func (f *CreationFlow) Active(operatorID int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	st, ok := f.states[operatorID]
	return ok && time.Now().Before(st.ExpiresAt)
}

// Cancel сбрасывает диалог.
func (f *CreationFlow) Cancel(operatorID int64) {
	f.mu.Lock()
	delete(f.states, operatorID)
	f.mu.Unlock()
}

// Advance обрабатывает очередной ответ оператора. Возвращает текст
// следующего запроса (или сообщения об ошибке ввода — шаг при этом
// не продвигается) и созданный турнир после последнего шага.
func (f *CreationFlow) Advance(ctx context.Context, operatorID int64, input string) (string, *Tournament, error) {
	reply, spec, commit := f.advanceStep(operatorID, strings.TrimSpace(input))
	if !commit {
		return reply, nil, nil
	}

	t, err := f.service.Create(ctx, spec)
	if err != nil {
		return "", nil, err
	}
	return "", t, nil
}

// advanceStep мутирует состояние диалога строго под мьютексом:
// два быстрых ответа одного оператора обрабатываются на разных
// горутинах. Последний шаг снимает состояние и возвращает собранную
// спецификацию; сам commit идёт уже без блокировки.
func (f *CreationFlow) advanceStep(operatorID int64, input string) (string, CreateSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.states[operatorID]
	if !ok || time.Now().After(st.ExpiresAt) {
		delete(f.states, operatorID)
		return "", CreateSpec{}, false
	}
	// Каждый ответ продлевает TTL.
	st.ExpiresAt = time.Now().Add(creationTTL)

	switch st.Step {
	case stepName:
		if input == "" {
			return "❌ Name cannot be empty. Enter tournament name:", CreateSpec{}, false
		}
		st.Spec.Name = input
		st.Step = stepDate
		return "✅ Tournament Name: " + input + "\n\nStep 2/6: Enter tournament date (YYYY-MM-DD):", CreateSpec{}, false

	case stepDate:
		if _, err := time.Parse("2006-01-02", input); err != nil {
			return "❌ Invalid date format! Use YYYY-MM-DD (e.g., 2026-09-28)", CreateSpec{}, false
		}
		st.Spec.Date = input
		st.Step = stepTime
		return "✅ Date: " + input + "\n\nStep 3/6: Enter tournament time (HH:MM format):", CreateSpec{}, false

	case stepTime:
		if _, err := time.Parse("15:04", input); err != nil {
			return "❌ Invalid time format! Use HH:MM (e.g., 20:30)", CreateSpec{}, false
		}
		st.Spec.Time = input
		st.Step = stepFee
		return "✅ Time: " + input + "\n\nStep 4/6: Enter entry fee (only number, e.g., 25):", CreateSpec{}, false

	case stepFee:
		fee, err := strconv.ParseInt(input, 10, 64)
		if err != nil || fee <= 0 {
			return "❌ Invalid entry fee! Enter a positive number (e.g., 25)", CreateSpec{}, false
		}
		st.Spec.EntryFee = fee
		st.Step = stepMap
		return "✅ Entry Fee: ₹" + input + "\n\nStep 5/6: Enter map name (e.g., Erangel, Sanhok, Miramar):", CreateSpec{}, false

	case stepMap:
		if input == "" {
			return "❌ Map cannot be empty. Enter map name:", CreateSpec{}, false
		}
		st.Spec.MapName = input
		st.Step = stepPrize
		return "✅ Map: " + input + "\n\n" +
			"Step 6/6: Select prize structure:\n" +
			"1. rank_based - Winner gets more, 2nd and 3rd get prizes\n" +
			"2. kill_based - Prize per kill + bonus\n" +
			"3. fixed - Winner takes all\n\n" +
			"Reply with: 1, 2, or 3", CreateSpec{}, false

	case stepPrize:
		var prizeType PrizeType
		switch input {
		case "1":
			prizeType = PrizeRankBased
		case "2":
			prizeType = PrizeKillBased
		case "3":
			prizeType = PrizeFixed
		default:
			return "❌ Reply with 1, 2 or 3", CreateSpec{}, false
		}
		st.Spec.Prize = DefaultPrize(st.Spec.Category, prizeType)

		spec := st.Spec
		delete(f.states, operatorID)
		return "", spec, true
	}

	return "", CreateSpec{}, false
}
