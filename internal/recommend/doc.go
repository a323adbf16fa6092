// Package recommend ranks catalog products for a user from the keywords the
// user recently showed interest in.
//
// Scoring is plain keyword containment: every preference keyword found as a
// case-insensitive substring of a product's name or description adds one point.
// Ranking is a stable sort on that score, so products the scorer cannot tell
// apart keep the order the catalog returned them in.
//
// The preference window itself is a bounded FIFO; PushKeyword is the only
// operation on it and is applied by the store under its append-and-cap
// primitive.
package recommend
