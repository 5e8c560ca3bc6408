package natsbus

import "fmt"

// Topic patterns for NATS pub/sub communication.

// TopicAgentNotify carries notifications addressed to one platform agent.
func TopicAgentNotify(agentID int64) string {
	return fmt.Sprintf("notify.agent.%d", agentID)
}

// TopicDisputeEvents carries state changes of one dispute for live views.
func TopicDisputeEvents(disputeID string) string {
	return fmt.Sprintf("events.dispute.%s", disputeID)
}

const (
	TopicNotifyAll = "notify.agent.*"
	TopicEventsAll = "events.>"
)
