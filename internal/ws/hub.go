// Package ws реализует websocket-хаб доставки звуковых команд в браузер.
// Сервер решает, что и когда должно прозвучать; подключенный клиент лишь
// воспроизводит присланные кадры. На одного пользователя допускается
// несколько подключений (несколько вкладок), кадры рассылаются во все.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voiceminder/voiceminder/internal/http/middlewarectx"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
)

// Типы кадров, отправляемых клиенту.
const (
	// FramePlayClip — воспроизвести синтезированный аудиофрагмент.
	FramePlayClip = "play-clip"
	// FrameSpeakNative — озвучить текст нативным синтезатором браузера.
	FrameSpeakNative = "speak-native"
	// FrameStop — немедленно прекратить воспроизведение.
	FrameStop = "stop"
	// FrameTrialOffer — показать предложение пробного периода.
	FrameTrialOffer = "trial-offer"
)

// Frame кадр протокола доставки звука.
type Frame struct {
	Type       string  `json:"type"`
	ReminderID string  `json:"reminder_id,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	Text       string  `json:"text,omitempty"`
	Audio      string  `json:"audio,omitempty"`
	MIME       string  `json:"mime,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
	Pitch      float64 `json:"pitch,omitempty"`
	Rate       float64 `json:"rate,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub реестр активных подключений пользователей.
type Hub struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[string]map[*client]bool
}

// NewHub создает пустой хаб подключений.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[string]map[*client]bool),
	}
}

// ServeWS принимает websocket-подключение аутентифицированного пользователя.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	const op = "ws.ServeWS"

	log := h.log.With(slog.String("op", op))

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", sl.Err(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Frame, 16),
	}
	h.register(userUID, c)
	log.Info("client connected", slog.String("user_uid", userUID))

	go h.writePump(c)
	go h.readPump(userUID, c)
}

func (h *Hub) register(userUID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[userUID]; !ok {
		h.conns[userUID] = make(map[*client]bool)
	}
	h.conns[userUID][c] = true
}

func (h *Hub) unregister(userUID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.conns[userUID]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.conns, userUID)
		}
	}
}

// Send рассылает кадр во все подключения пользователя. Отсутствие
// подключений не является ошибкой: пользователь просто офлайн.
func (h *Hub) Send(userUID string, frame Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userUID] {
		select {
		case c.send <- frame:
		default:
			// медленный клиент, кадр отбрасывается
		}
	}
}

// Connected сообщает, есть ли у пользователя хотя бы одно активное подключение.
func (h *Hub) Connected(userUID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userUID]) > 0
}

func (h *Hub) writePump(c *client) {
	pingTicker := time.NewTicker(15 * time.Second)
	defer func() {
		pingTicker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump читает входящие сообщения только ради обработки pong и закрытия:
// клиент ничего не присылает по этому каналу.
func (h *Hub) readPump(userUID string, c *client) {
	defer func() {
		h.unregister(userUID, c)
		_ = c.conn.Close()
		h.log.Info("client disconnected", slog.String("user_uid", userUID))
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PlayClip отправляет синтезированный фрагмент на воспроизведение.
func (h *Hub) PlayClip(userUID, reminderID, subject, text, audio, mime string, speed float64) {
	h.Send(userUID, Frame{
		Type:       FramePlayClip,
		ReminderID: reminderID,
		Subject:    subject,
		Text:       text,
		Audio:      audio,
		MIME:       mime,
		Speed:      speed,
	})
}

// SpeakNative просит клиента озвучить текст нативным синтезатором браузера.
func (h *Hub) SpeakNative(userUID, reminderID, text string, pitch, rate float64) {
	h.Send(userUID, Frame{
		Type:       FrameSpeakNative,
		ReminderID: reminderID,
		Text:       text,
		Pitch:      pitch,
		Rate:       rate,
	})
}

// Stop прекращает воспроизведение на стороне клиента.
func (h *Hub) Stop(userUID string) {
	h.Send(userUID, Frame{Type: FrameStop})
}

// OfferTrial показывает пользователю предложение пробного периода.
func (h *Hub) OfferTrial(userUID string) {
	h.Send(userUID, Frame{Type: FrameTrialOffer})
}
