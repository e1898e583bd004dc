package rabbitmq

// Exchange и ключи маршрутизации уведомлений спортзала.
const (
	NotificationsExchange = "gym.notifications"
	RoutingKeyExpiring    = "expiring"
)

// QueueConfig описывает очередь и ключ, с которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди уведомлений.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "gym.notifications.expiring", RoutingKey: RoutingKeyExpiring},
	}
}
