package dispatch

// AllowList is the fixed set of group IDs that may receive images
type AllowList struct {
	ids map[int64]struct{}
}

// NewAllowList creates an allow-list from the given group IDs
func NewAllowList(ids []int64) AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

// Contains reports whether id is on the list
func (a AllowList) Contains(id int64) bool {
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of allowed groups
func (a AllowList) Len() int {
	return len(a.ids)
}

// IsAuthorized reports whether chat may trigger resource-sending actions.
// Both stages apply: the chat must be group-like and on the allow-list.
func IsAuthorized(chat Chat, allow AllowList) bool {
	if !IsGroupLike(chat.Kind) {
		return false
	}
	return allow.Contains(chat.ID)
}
