package events

import "strings"

const (
	ChannelPrefixUser = "channel:user:"
	ChannelBroadcast  = "channel:broadcast"
)

// UserChannel is the pub/sub channel carrying events for one user.
func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}

// UserIDFromChannel extracts the user id from a user channel name.
func UserIDFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, ChannelPrefixUser) {
		return "", false
	}
	id := strings.TrimPrefix(channel, ChannelPrefixUser)
	return id, id != ""
}
