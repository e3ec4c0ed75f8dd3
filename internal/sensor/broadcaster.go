package sensor

// Subscriber reacts to environmental readings. *device.Device satisfies it.
type Subscriber interface {
	ReactToSensor(value int)
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(value int)

// ReactToSensor implements Subscriber.
func (f SubscriberFunc) ReactToSensor(value int) {
	f(value)
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broadcaster fans a reading out to its subscribers.
//
// The subscriber list is append-only and not de-duplicated. A Broadcaster is
// not safe for concurrent use.
type Broadcaster struct {
	subscribers []Subscriber
	last        int
	hasLast     bool
	logger      Logger
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{logger: noopLogger{}}
}

// SetLogger sets the logger for the broadcaster.
func (b *Broadcaster) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	b.logger = logger
}

// Subscribe appends a subscriber.
func (b *Broadcaster) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// Trigger delivers value to every subscriber in subscription order. All
// subscribers have reacted by the time Trigger returns.
func (b *Broadcaster) Trigger(value int) {
	b.last = value
	b.hasLast = true
	b.logger.Debug("sensor reading broadcast", "value", value, "subscribers", len(b.subscribers))

	for _, s := range b.subscribers {
		s.ReactToSensor(value)
	}
}

// Subscribers returns the number of subscribers.
func (b *Broadcaster) Subscribers() int {
	return len(b.subscribers)
}

// Last returns the most recent reading, if any.
func (b *Broadcaster) Last() (int, bool) {
	return b.last, b.hasLast
}
