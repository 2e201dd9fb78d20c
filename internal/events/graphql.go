package events

import "time"

// GraphQLStart is emitted before executing an operation.
type GraphQLStart struct {
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing an operation. ErrorCount counts
// path-tagged execution errors; partial successes report both data and a
// nonzero count.
type GraphQLFinish struct {
	OperationName string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}
