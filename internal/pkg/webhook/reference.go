package webhook

import "regexp"

// ReferenceInfo is the (guild, role, user) triple a SePay payment
// reference must encode so the payment can be matched to a purchase.
type ReferenceInfo struct {
	GuildID string
	RoleID  string
	UserID  string
}

var (
	// Primary grammar: DOCOBO-<guildId>-<roleId>-<userId>.
	referencePattern = regexp.MustCompile(`^DOCOBO-(\d+)-(\d+)-(\d+)$`)
	// Fallback: Discord snowflakes are 17-19 decimal digits.
	snowflakePattern = regexp.MustCompile(`\d{17,19}`)
)

// ParseReferenceCode extracts guild/role/user ids from a free-text bank
// transfer reference. Falls back to picking the first three snowflake
// sized numbers in order of appearance when the transfer text mangled
// the DOCOBO code.
func ParseReferenceCode(code string) (*ReferenceInfo, bool) {
	if code == "" {
		return nil, false
	}

	if m := referencePattern.FindStringSubmatch(code); m != nil {
		return &ReferenceInfo{GuildID: m[1], RoleID: m[2], UserID: m[3]}, true
	}

	if ids := snowflakePattern.FindAllString(code, -1); len(ids) >= 3 {
		return &ReferenceInfo{GuildID: ids[0], RoleID: ids[1], UserID: ids[2]}, true
	}

	return nil, false
}
