package handler

// RegisterRequest is the body of POST /user/register
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=30"`
	LastName  string `json:"last_name" binding:"required,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Company   string `json:"company" binding:"required,max=40"`
	Position  string `json:"position" binding:"required,max=40"`
	Type      string `json:"type" binding:"omitempty,oneof=shop buyer"`
}

// ConfirmRequest is the body of POST /user/confirm
type ConfirmRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// LoginRequest is the body of POST /user/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateDetailsRequest is the body of POST /user/details; absent fields are kept
type UpdateDetailsRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=30"`
	LastName  *string `json:"last_name" binding:"omitempty,max=30"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Company   *string `json:"company" binding:"omitempty,max=40"`
	Position  *string `json:"position" binding:"omitempty,max=40"`
	Password  *string `json:"password"`
}

// PasswordResetRequest is the body of POST /user/password_reset
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest is the body of POST /user/password_reset/confirm
type PasswordResetConfirmRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}
