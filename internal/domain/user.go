package domain

import "time"

// Account is a passwordless user created by redeeming a verification code.
// PK: email, GSI: user_id-index.
type Account struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Email         string    `json:"email" dynamodbav:"email"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	Role          string    `json:"role" dynamodbav:"role"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}
