package ws

// Входящие фреймы; всё, кроме type=message, игнорируется.
const TypeMessage = "message"

type InboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Исходящие события.
const EventMessage = "message"

const (
	SenderMe    = "me"
	SenderOther = "other"
)

type OutboundFrame struct {
	Event string      `json:"event"`
	Data  MessageData `json:"data"`
}

// MessageData — sender резолвится на каждое подключение отдельно
// («me»/«other» относительно identity получателя), это не глобальное поле.
type MessageData struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}
