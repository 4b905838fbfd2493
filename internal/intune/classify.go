package intune

// IsActive reports whether a policy counts as actively assigned: at least
// one assignment targets all devices, all users, or a group. The check
// runs over the raw discriminator captured on each Assignment, never over
// the resolved label, which is lookup- and locale-dependent.
func IsActive(assignments []Assignment) bool {
	for _, a := range assignments {
		switch normalizeODataType(a.TargetODataType) {
		case "alldevicesassignmenttarget",
			"alllicensedusersassignmenttarget",
			"groupassignmenttarget":
			return true
		}
	}
	return false
}
