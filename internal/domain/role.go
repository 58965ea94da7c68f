package domain

// Role adalah himpunan tertutup. Role tidak pernah bisa di-set oleh client
// saat registrasi; hanya admin yang mengubahnya langsung di database.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAllowed memeriksa role terhadap daftar role yang diizinkan.
// Pure function, tanpa side effect.
func IsAllowed(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Privileged berarti punya hak lintas-user: melihat semua pengajuan
// dan melakukan approve/reject.
func Privileged(role string) bool {
	return IsAllowed(role, RoleManager, RoleAdmin)
}
