package models

// RoomHistory is the history endpoint's response: the derived room id plus its
// messages oldest first, seeding the chat view before live events arrive.
type RoomHistory struct {
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}
