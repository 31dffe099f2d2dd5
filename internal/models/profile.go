package models

import (
	"strings"
	"time"
)

// Profile is a monkey in the social graph. Friendships live in their own
// relation; BestFriendID is the single directional best-friend reference.
type Profile struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          *int      `json:"age"`
	BestFriendID *int64    `json:"best_friend_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileListing is one row of the profile list: the profile, the number of
// friends it has and its best friend's identity, if any.
type ProfileListing struct {
	Profile
	FriendCount    int     `json:"friend_count"`
	BestFriendName *string `json:"best_friend_name"`
}

// ProfileInput holds raw form values for creating or editing a profile.
type ProfileInput struct {
	Name  string
	Email string
	Age   string
}

// ProfileFields is a validated ProfileInput. Age is nil when left blank.
type ProfileFields struct {
	Name  string
	Email string
	Age   *int
}

// SortKey names a sortable column of the profile list.
type SortKey string

const (
	SortByName           SortKey = "name"
	SortByEmail          SortKey = "email"
	SortByAge            SortKey = "age"
	SortByBestFriendName SortKey = "bf"
	SortByFriendCount    SortKey = "friends"
)

// ProfileOrder is a sort key plus direction. The zero value means unordered.
type ProfileOrder struct {
	Key  SortKey
	Desc bool
}

// ParseProfileOrder parses values like "age" or "-friends". The second return
// value is false for empty or unrecognised input, in which case no ordering
// should be applied.
func ParseProfileOrder(s string) (ProfileOrder, bool) {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	key := SortKey(strings.TrimPrefix(s, "-"))
	switch key {
	case SortByName, SortByEmail, SortByAge, SortByBestFriendName, SortByFriendCount:
		return ProfileOrder{Key: key, Desc: desc}, true
	default:
		return ProfileOrder{}, false
	}
}

// String renders the order back into its query-string form.
func (o ProfileOrder) String() string {
	if o.Key == "" {
		return ""
	}
	if o.Desc {
		return "-" + string(o.Key)
	}
	return string(o.Key)
}

// Toggle returns the order a column header should link to: ascending on a new
// column, flipped direction on the current one.
func (o ProfileOrder) Toggle(key SortKey) ProfileOrder {
	if o.Key == key {
		return ProfileOrder{Key: key, Desc: !o.Desc}
	}
	return ProfileOrder{Key: key}
}
