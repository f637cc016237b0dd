package extract

import (
	"regexp"
	"strings"
)

// partyRolePattern matches the role chip PrimeNG renders next to a party
// name. Chip text varies ("GRANTOR", "Role: Grantee"), so only the keyword
// is kept.
var partyRolePattern = regexp.MustCompile(`(?i)\b(GRANTOR|GRANTEE)\b`)

// NormalizeParty renders a captured party cell as "NAME (ROLE)". Cell text
// arrives with the name and any chip text on separate lines (see cellText).
// Without a recognizable role the name is returned bare; empty cells stay
// empty.
func NormalizeParty(cell string) string {
	lines := strings.Split(cell, "\n")

	var name, role string
	for _, line := range lines {
		line = CleanText(line)
		if line == "" {
			continue
		}
		if m := partyRolePattern.FindString(line); m != "" {
			if role == "" {
				role = strings.ToUpper(m)
			}
			// A line that is just the chip contributes no name text.
			if CleanText(partyRolePattern.ReplaceAllString(line, "")) == "" {
				continue
			}
			line = CleanText(partyRolePattern.ReplaceAllString(line, ""))
		}
		if name == "" {
			name = line
		}
	}

	if name == "" {
		return ""
	}
	if role == "" {
		return name
	}
	return name + " (" + role + ")"
}
