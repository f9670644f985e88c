package auth

import id "opptak/pkg/domain"

// Staff is a municipal employee account. Guardians authenticate through the
// national ID portal upstream and never hold accounts here.
type Staff struct {
	ID           id.StaffID
	Username     string
	PasswordHash string
	Role         id.Role
	DisplayName  string
}
