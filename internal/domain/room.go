package domain

import "fmt"

// RoomOf returns the canonical room of an unordered pair of users: chat{max}_{min}
func RoomOf(u1, u2 int64) string {
	if u1 > u2 {
		return fmt.Sprintf("chat%d_%d", u1, u2)
	}
	return fmt.Sprintf("chat%d_%d", u2, u1)
}
