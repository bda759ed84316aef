package lifecycle

// Instance is an object whose resources are claimed on Start and given back on Close.
type Instance interface {
	Close_() error
	String() string
}

// Manager runs the start function at most once successfully and releases the instance at most once.
type Manager[T Instance] interface {
	Start(func(T) error) error
	Close() error
	Started() bool
	Closed() bool
}

type StartedAlreadyError struct{}

func (*StartedAlreadyError) Error() string {
	return "started already"
}

type StartedAfterCloseError struct{}

func (*StartedAfterCloseError) Error() string {
	return "start after close"
}
