package entities

// Profile - аутентифицированный пользователь. Permission - единственное поле,
// которое используется при проверке прав.
type Profile struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Permission string `json:"permission"`
}
