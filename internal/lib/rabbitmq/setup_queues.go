package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации в exchange нотификаций.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации событий нотификатора.
const (
	RoutingPlanApproved = "plan.approved"
	RoutingTrialExpired = "trial.expired"
)

// GetNotificationQueues возвращает очереди, которые слушает воркер-нотификатор.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.plan.approved", RoutingKey: RoutingPlanApproved},
		{QueueName: "notification.trial.expired", RoutingKey: RoutingTrialExpired},
	}
}
