package dynamo

// DynamoDB attribute names used in keys and condition expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldRecipient = "recipient"
	fieldCode      = "code"
	fieldPurgeAt   = "purge_at"
	fieldEmail     = "email"
	fieldUserID    = "user_id"
)
