package user

type Request struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
}
