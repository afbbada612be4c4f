package entities

// LeaderboardEntry is one row of a leaderboard view
type LeaderboardEntry struct {
	Rank   int   `db:"rank"`
	UserID int64 `db:"user_id"`
	Total  int64 `db:"total"`
}

// VNInfo describes a visual novel title resolved from the external
// catalog. The catalog itself is an external collaborator; only the
// fields the ledger needs are carried here.
type VNInfo struct {
	ID            string
	Title         string
	TitleEN       string
	LengthMinutes int64
}

// DefaultPoints derives the point value for completing this VN from its
// catalog length: one point per ten hours of reading, minimum one.
func (v *VNInfo) DefaultPoints() int64 {
	if v.LengthMinutes <= 0 {
		return 1
	}
	points := v.LengthMinutes / 600
	if points < 1 {
		points = 1
	}
	return points
}
