package recommend

// PushKeyword appends keyword to window and drops the oldest entries until at
// most capacity remain. The input slice is not modified.
func PushKeyword(window []string, keyword string, capacity int) []string {
	next := make([]string, 0, len(window)+1)
	next = append(next, window...)
	next = append(next, keyword)
	if capacity > 0 && len(next) > capacity {
		next = next[len(next)-capacity:]
	}
	return next
}
