package storage

const (
	KEY_MARKET = "storage::market"
)

const (
	TABLE_NAME_SUBMISSION = "submissions"
)
