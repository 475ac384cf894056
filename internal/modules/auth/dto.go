package auth

type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type fieldMessage struct {
	field   string
	message string
}

// checked in form order; the first failing field is reported
var registerMessages = []fieldMessage{
	{"email", "enter a valid email address"},
	{"password", "use at least 8 characters"},
	{"confirmPassword", "passwords do not match"},
}

var loginMessages = []fieldMessage{
	{"email", "enter your email"},
	{"password", "enter your password"},
}
