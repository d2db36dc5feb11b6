package domain

import "time"

// Sender identifica quién escribió un mensaje del chat de soporte.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message es inmutable una vez creado; lo posee el log de la conversación.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}
