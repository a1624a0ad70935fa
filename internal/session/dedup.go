package session

// hasAttended reports whether an identity already appears in the roster,
// matching on either registration number or student email. The scan
// short-circuits on the first hit; rosters are class-sized so a linear
// pass is fine.
func hasAttended(roster []AttendanceRecord, regno, studentEmail string) bool {
	for _, rec := range roster {
		if rec.RegNo == regno || rec.StudentEmail == studentEmail {
			return true
		}
	}
	return false
}
