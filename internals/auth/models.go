package auth

type LoginRequestBody struct {
	Password string `json:"password"`
	UserName string `json:"user_name"`
}

type SignUpRequestBody struct {
	UserName string `json:"user_name"`
	MailID   string `json:"mail_id"`
	Password string `json:"password"`
}
