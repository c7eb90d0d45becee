package domain

type User struct {
	Id           string
	Username     string
	PasswordHash string
}

// TokenPayload is what a verified bearer token resolves to.
type TokenPayload struct {
	Id       string
	Username string
}

// Room statuses as stored in the rooms table.
const (
	RoomStatusOpen   = "OPEN"
	RoomStatusClosed = "CLOSED"
)

type Room struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}
