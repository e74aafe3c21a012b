// Package playback управляет звуковыми циклами сработавших напоминаний.
//
// На пользователя в каждый момент времени звучит не больше одного
// напоминания; сработавшие одновременно выстраиваются в очередь и стартуют
// по мере закрытия предыдущих. Контекст отмены проверяется в начале каждой
// итерации и каждого отложенного продолжения, поэтому Stop действует
// немедленно. Звук доставляется через приемник — websocket-хаб.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voiceminder/voiceminder/internal/audio"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/models"
	"github.com/voiceminder/voiceminder/internal/tts"
)

// playGap пауза между повторами озвучки.
const playGap = 2 * time.Second

// State состояние звукового цикла пользователя.
type State int

// Состояния цикла воспроизведения.
const (
	Idle State = iota
	Playing
	WaitingGap
	Cancelled
)

// Sink приемник звуковых команд на стороне клиента.
type Sink interface {
	PlayClip(userUID, reminderID, subject, text, audio, mime string, speed float64)
	SpeakNative(userUID, reminderID, text string, pitch, rate float64)
	Stop(userUID string)
}

// Synthesizer синтезирует речь. Может отсутствовать: тогда работает
// только нативное озвучивание на стороне клиента.
type Synthesizer interface {
	GenerateSpeech(ctx context.Context, text, mood, voiceID string) (*tts.Speech, error)
}

type pendingReminder struct {
	user *models.User
	rem  *models.Reminder
}

type userState struct {
	queue  []pendingReminder
	cancel context.CancelFunc
	active bool
	state  State
}

// Manager держит звуковые циклы всех пользователей.
type Manager struct {
	synth Synthesizer
	sink  Sink
	log   *slog.Logger
	gap   time.Duration

	mu    sync.Mutex
	users map[string]*userState
}

// NewManager создает менеджер воспроизведения.
func NewManager(synth Synthesizer, sink Sink, log *slog.Logger) *Manager {
	return &Manager{
		synth: synth,
		sink:  sink,
		log:   log,
		gap:   playGap,
		users: make(map[string]*userState),
	}
}

// Enqueue ставит сработавшее напоминание в очередь пользователя.
// Если сейчас ничего не звучит, воспроизведение начинается немедленно.
func (m *Manager) Enqueue(user *models.User, rem *models.Reminder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.users[user.UUID]
	if !ok {
		st = &userState{state: Idle}
		m.users[user.UUID] = st
	}

	p := pendingReminder{user: user, rem: rem}
	if st.active {
		st.queue = append(st.queue, p)
		return
	}
	m.startLocked(user.UUID, st, p)
}

// Stop останавливает активный цикл пользователя. Следующее напоминание
// из очереди, если есть, начнет звучать после остановки.
func (m *Manager) Stop(userUID string) {
	m.mu.Lock()
	st, ok := m.users[userUID]
	if ok && st.active && st.cancel != nil {
		st.state = Cancelled
		st.cancel()
	}
	m.mu.Unlock()

	m.sink.Stop(userUID)
}

// StateOf возвращает текущее состояние цикла пользователя.
func (m *Manager) StateOf(userUID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.users[userUID]; ok {
		return st.state
	}
	return Idle
}

func (m *Manager) startLocked(userUID string, st *userState, p pendingReminder) {
	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	st.active = true
	st.state = Playing
	go m.run(ctx, userUID, p)
}

func (m *Manager) finished(userUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.users[userUID]
	if !ok {
		return
	}
	st.active = false
	st.cancel = nil
	st.state = Idle

	if len(st.queue) > 0 {
		next := st.queue[0]
		st.queue = st.queue[1:]
		m.startLocked(userUID, st, next)
		return
	}
	delete(m.users, userUID)
}

func (m *Manager) setState(userUID string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.users[userUID]; ok && st.active {
		st.state = state
	}
}

func (m *Manager) run(ctx context.Context, userUID string, p pendingReminder) {
	defer m.finished(userUID)

	text := spokenText(p.user, p.rem)

	if m.synth == nil {
		m.nativeLoop(ctx, userUID, p, text)
		return
	}

	intro, truncated := audio.IntroText(text)
	if !truncated {
		speech, err := m.synth.GenerateSpeech(ctx, text, string(p.rem.Mood), p.rem.VoiceID)
		if err != nil {
			m.log.Error("speech synthesis failed, falling back to native", sl.Err(err))
			m.nativeLoop(ctx, userUID, p, text)
			return
		}
		m.clipLoop(ctx, userUID, p, speech, nil)
		return
	}

	// длинный текст: немедленно звучит вступление, полный текст
	// синтезируется в фоне и подменяет клип по готовности
	introSpeech, err := m.synth.GenerateSpeech(ctx, intro, string(p.rem.Mood), p.rem.VoiceID)
	if err != nil {
		m.log.Error("intro synthesis failed, falling back to native", sl.Err(err))
		m.nativeLoop(ctx, userUID, p, text)
		return
	}

	fullCh := make(chan *tts.Speech, 1)
	go func() {
		speech, err := m.synth.GenerateSpeech(ctx, text, string(p.rem.Mood), p.rem.VoiceID)
		if err != nil {
			m.log.Error("full text synthesis failed, keeping intro clip", sl.Err(err))
			close(fullCh)
			return
		}
		fullCh <- speech
	}()

	m.clipLoop(ctx, userUID, p, introSpeech, fullCh)
}

// clipLoop крутит цикл играть→ждать для синтезированного клипа.
// Если передан fullCh, клип подменяется на полный по готовности.
func (m *Manager) clipLoop(ctx context.Context, userUID string, p pendingReminder, speech *tts.Speech, fullCh <-chan *tts.Speech) {
	clip, err := audio.DecodePCM16(speech.Data, speech.MIME)
	if err != nil {
		m.log.Error("failed to decode clip, falling back to native", sl.Err(err))
		m.nativeLoop(ctx, userUID, p, spokenText(p.user, p.rem))
		return
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if fullCh != nil {
			select {
			case full, ok := <-fullCh:
				fullCh = nil
				if ok {
					if decoded, err := audio.DecodePCM16(full.Data, full.MIME); err == nil {
						speech, clip = full, decoded
					}
				}
			default:
			}
		}

		m.setState(userUID, Playing)
		m.sink.PlayClip(userUID, p.rem.UUID, p.rem.Subject, p.rem.Text,
			speech.Data, speech.MIME, p.rem.Speed)

		m.setState(userUID, WaitingGap)
		timer.Reset(clip.Duration(p.rem.Speed) + m.gap)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !p.rem.RepeatVoice {
			// одиночное длинное напоминание: прозвучало только вступление,
			// полный клип доигрывается по готовности
			if fullCh != nil {
				m.playPendingFull(ctx, userUID, p, fullCh, timer)
			}
			return
		}
	}
}

// playPendingFull дожидается фонового синтеза полного текста и проигрывает
// клип один раз. Закрытый канал означает, что синтез не удался.
func (m *Manager) playPendingFull(ctx context.Context, userUID string, p pendingReminder, fullCh <-chan *tts.Speech, timer *time.Timer) {
	var full *tts.Speech
	select {
	case <-ctx.Done():
		return
	case speech, ok := <-fullCh:
		if !ok {
			return
		}
		full = speech
	}

	clip, err := audio.DecodePCM16(full.Data, full.MIME)
	if err != nil {
		m.log.Error("failed to decode full clip", sl.Err(err))
		return
	}

	m.setState(userUID, Playing)
	m.sink.PlayClip(userUID, p.rem.UUID, p.rem.Subject, p.rem.Text,
		full.Data, full.MIME, p.rem.Speed)

	m.setState(userUID, WaitingGap)
	timer.Reset(clip.Duration(p.rem.Speed) + m.gap)
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// nativeLoop переотправляет команду нативного озвучивания каждые две
// секунды, пока цикл не отменят. Настроение переводится в высоту и
// скорость речи браузерного синтезатора.
func (m *Manager) nativeLoop(ctx context.Context, userUID string, p pendingReminder, text string) {
	pitch, rate := moodVoiceParams(p.rem.Mood, p.rem.Speed)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.setState(userUID, Playing)
		m.sink.SpeakNative(userUID, p.rem.UUID, text, pitch, rate)

		if !p.rem.RepeatVoice {
			m.setState(userUID, WaitingGap)
			timer.Reset(m.gap)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			return
		}

		m.setState(userUID, WaitingGap)
		timer.Reset(m.gap)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// moodVoiceParams переводит настроение в параметры нативного синтезатора.
func moodVoiceParams(mood models.Mood, speed float64) (pitch, rate float64) {
	if speed == 0 {
		speed = 1.0
	}
	switch mood {
	case models.MoodUrgent:
		pitch = 1.2
		rate = speed * 1.2
		if rate > 2.0 {
			rate = 2.0
		}
	case models.MoodCheerful:
		pitch = 1.1
		rate = speed
	default:
		pitch = 0.9
		rate = speed * 0.9
		if rate < 0.5 {
			rate = 0.5
		}
	}
	return pitch, rate
}

func spokenText(user *models.User, rem *models.Reminder) string {
	body := rem.Text
	if body == "" {
		body = rem.Subject
	}
	if user.Name == "" {
		return body
	}
	return fmt.Sprintf("%s. %s", user.Name, body)
}
