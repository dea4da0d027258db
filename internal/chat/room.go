package chat

// DeriveRoomID computes the canonical room id for a pair of user ids.
// The result is the same regardless of argument order, so both sides of a
// conversation always land in the same room. User ids must not contain "_".
func DeriveRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
