package dynamo

// DynamoDB attribute names used in keys and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID      = "user_id"
	fieldIdentifier  = "identifier"
	fieldCounterName = "name"
	fieldCounterVal  = "value"
	fieldLastLoginAt = "last_login_at"
	fieldUpdatedAt   = "updated_at"
)

// Identifier kinds stored in the user_identifiers table.
const (
	kindUsername = "username"
	kindPhone    = "phone"
	kindEmail    = "email"
)

const userIDCounter = "users"
