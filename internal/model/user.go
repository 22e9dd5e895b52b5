package model

type User struct {
	BaseModel
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`
	Role     string `bson:"role" json:"role"`
	ImageURL string `bson:"image_url" json:"imageURL"`
}

// Roles assignable through the dashboard.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super admin"
	RoleCashier    = "cashier"
	RoleUser       = "user"
	RoleKiosk      = "kiosk"
)

var ValidRoles = []string{RoleAdmin, RoleSuperAdmin, RoleCashier, RoleUser, RoleKiosk}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
