package ports

type EventBus interface {
	Publish(topic string, payload []byte)
	// Subscribe sans argument reçoit tous les topics; avec arguments, seuls
	// les topics listés sont délivrés.
	Subscribe(topics ...string) (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}
