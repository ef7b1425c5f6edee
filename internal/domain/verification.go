package domain

import "time"

// VerificationRecord is the pending code for one recipient.
// PK: recipient. A reissue overwrites the previous record.
// ExpiresAt is Unix milliseconds; PurgeAt is the DynamoDB TTL (Unix seconds)
// and always lies after ExpiresAt so expired records stay readable.
type VerificationRecord struct {
	Recipient string `json:"recipient" dynamodbav:"recipient"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	PurgeAt   int64  `json:"-" dynamodbav:"purge_at"`
}

// Expired reports whether the record is past its validity window at now.
func (v *VerificationRecord) Expired(now time.Time) bool {
	return now.UnixMilli() > v.ExpiresAt
}

// IssueCodesRequest is the body of the send-code endpoint.
type IssueCodesRequest struct {
	Recipients []string `json:"recipients" validate:"required,min=1,dive,required,email"`
}

// RedeemCodeRequest is the body of the verify-code endpoint.
type RedeemCodeRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Code      string `json:"code" validate:"required"`
}
