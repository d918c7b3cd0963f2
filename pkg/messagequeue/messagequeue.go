package messagequeue

// MessageQueue defines the interface for message queue services. The backend
// only produces activity events; consumption lives in downstream workers.
type MessageQueue interface {
	Publish(queueName string, body []byte) error
	Close() error
}
