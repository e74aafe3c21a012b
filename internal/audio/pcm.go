// Package audio содержит утилиты работы со звуком: декодирование PCM-данных,
// пришедших от синтезатора речи, и подготовка вступительного фрагмента для
// длинных текстов напоминаний.
package audio

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// SampleRate частота дискретизации, в которой синтезатор отдает звук.
const SampleRate = 24000

// introMaxChars максимальная длина вступительного фрагмента длинного текста.
const introMaxChars = 80

// introThreshold длина текста, начиная с которой озвучивается только вступление.
const introThreshold = 100

// Clip декодированный аудиофрагмент: моно PCM16, 24 кГц.
type Clip struct {
	Samples []float32
	MIME    string
}

// Duration возвращает длительность фрагмента при заданной скорости воспроизведения.
func (c *Clip) Duration(speed float64) time.Duration {
	if speed <= 0 {
		speed = 1.0
	}
	seconds := float64(len(c.Samples)) / float64(SampleRate) / speed
	return time.Duration(seconds * float64(time.Second))
}

// DecodePCM16 декодирует base64-строку с сырыми PCM16LE-данными в фрагмент.
func DecodePCM16(data string, mime string) (*Clip, error) {
	const op = "audio.DecodePCM16"

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float32(v) / 32768.0
	}
	return &Clip{Samples: samples, MIME: mime}, nil
}

// IntroText возвращает вступительный фрагмент для длинного текста и признак,
// что текст был сокращен. Короткие тексты возвращаются как есть.
func IntroText(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= introThreshold {
		return text, false
	}

	intro := string(runes[:introMaxChars])
	if idx := strings.LastIndexByte(intro, ' '); idx > 0 {
		intro = intro[:idx]
	}
	return strings.TrimSpace(intro), true
}
