package domain

import "github.com/bwmarrin/snowflake"

// Token is the login response body. TokenType is always "bearer".
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Claims struct {
	UserID snowflake.ID `json:"user_id"`
	Role   string       `json:"role"`
}
