package events

// PhotoPosted is emitted after a postPhoto mutation commits.
type PhotoPosted struct {
	PhotoID  string
	PostedBy string
	Category string
}

// UserJoined is emitted after an addUser mutation commits.
type UserJoined struct {
	GithubLogin string
}

// FriendshipFormed is emitted after an addFriendship mutation commits.
type FriendshipFormed struct {
	FriendshipID string
	Logins       []string
}

// SubscriptionDelivered is emitted when a broker event reaches a subscriber
// queue.
type SubscriptionDelivered struct {
	SubscriptionID string
	Topic          string
	QueueLen       int
}

// SubscriptionDropped is emitted when a full subscriber queue evicts its
// oldest pending event.
type SubscriptionDropped struct {
	SubscriptionID string
	Topic          string
}
