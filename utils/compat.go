package utils

// bloodCompatibility maps a blood group to the donor groups that may
// give to a patient of that group (O- gives to everyone, AB+ receives
// from everyone). Built once, never mutated.
var bloodCompatibility = map[string][]string{
	"O-":  {"O-"},
	"O+":  {"O-", "O+"},
	"A-":  {"O-", "A-"},
	"A+":  {"O-", "O+", "A-", "A+"},
	"B-":  {"O-", "B-"},
	"B+":  {"O-", "O+", "B-", "B+"},
	"AB-": {"O-", "A-", "B-", "AB-"},
	"AB+": {"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"},
}

// BloodGroups lists the eight valid groups, used for payload validation.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// CompatibleRequestGroups returns the request blood groups surfaced to a
// donor with the given group in the matching feed. Unknown or empty
// group yields nil.
func CompatibleRequestGroups(donorGroup string) []string {
	return bloodCompatibility[donorGroup]
}

// CanDonate reports whether a donor with donorGroup may give to a
// patient needing requestGroup.
func CanDonate(donorGroup, requestGroup string) bool {
	for _, g := range bloodCompatibility[requestGroup] {
		if g == donorGroup {
			return true
		}
	}
	return false
}

// IsValidBloodGroup reports whether g is one of the eight blood groups.
func IsValidBloodGroup(g string) bool {
	for _, b := range BloodGroups {
		if b == g {
			return true
		}
	}
	return false
}
